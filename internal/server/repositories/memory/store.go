// Package memory is an in-process RepositoryManager and dbx.Transactor.
// It backs local development without PostgreSQL and the HTTP end-to-end
// tests. Transactions are serialized; a failed one undoes only the rows it
// wrote, so concurrent writes made outside it survive.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/StormRens/Fake-Twitter/internal/dbx"
	"github.com/StormRens/Fake-Twitter/internal/server/models"
	"github.com/StormRens/Fake-Twitter/internal/server/repositories/follows"
	"github.com/StormRens/Fake-Twitter/internal/server/repositories/posts"
	"github.com/StormRens/Fake-Twitter/internal/server/repositories/repomanager"
	"github.com/StormRens/Fake-Twitter/internal/server/repositories/users"
)

type edge struct {
	follower string
	followee string
}

type state struct {
	users   map[string]models.User
	follows map[edge]int64
	posts   map[string]models.Post
	// seq orders rows that share a timestamp
	postSeq map[string]int64
}

func newState() state {
	return state{
		users:   map[string]models.User{},
		follows: map[edge]int64{},
		posts:   map[string]models.Post{},
		postSeq: map[string]int64{},
	}
}

type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	st   state
	seq  int64
	now  func() time.Time
}

var (
	_ repomanager.RepositoryManager = (*Store)(nil)
	_ dbx.Transactor                = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// SetClock replaces the time source used for created_at/updated_at.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) RunMigrations(context.Context, *sql.DB) error { return nil }

func (s *Store) Users(h dbx.DBTX) users.Repository     { return &userRepo{s: s, tx: asTxn(h)} }
func (s *Store) Follows(h dbx.DBTX) follows.Repository { return &followRepo{s: s, tx: asTxn(h)} }
func (s *Store) Posts(h dbx.DBTX) posts.Repository     { return &postRepo{s: s, tx: asTxn(h)} }

// Conn returns nil: writes through it apply immediately.
func (s *Store) Conn() dbx.DBTX { return nil }

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	t := &txn{}
	defer func() {
		if p := recover(); p != nil {
			s.rollback(t)
			panic(p)
		}
		if err != nil {
			s.rollback(t)
		}
	}()

	return fn(ctx, t)
}

func (s *Store) rollback(t *txn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i](&s.st)
	}
	t.undo = nil
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// sortNewestFirst orders by created_at descending, latest insert first on ties.
func (s *Store) sortNewestFirst(list []*models.Post) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return s.st.postSeq[a.ID] > s.st.postSeq[b.ID]
	})
}
