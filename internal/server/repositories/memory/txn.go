package memory

import (
	"context"
	"database/sql"
	"errors"

	"github.com/StormRens/Fake-Twitter/internal/dbx"
	"github.com/StormRens/Fake-Twitter/internal/server/models"
)

var errNoSQL = errors.New("memory store does not execute SQL")

// txn is the handle WithinTx passes to fn. Repositories bound to it log how
// to revert each row they write; rollback replays the log backwards.
type txn struct {
	undo []func(*state)
}

var _ dbx.DBTX = (*txn)(nil)

func (*txn) ExecContext(context.Context, string, ...any) (sql.Result, error) { return nil, errNoSQL }
func (*txn) QueryContext(context.Context, string, ...any) (*sql.Rows, error) { return nil, errNoSQL }
func (*txn) QueryRowContext(context.Context, string, ...any) *sql.Row       { return nil }

func asTxn(h dbx.DBTX) *txn {
	t, _ := h.(*txn)
	return t
}

// The helpers below must be called with Store.mu held for writing.

func (t *txn) record(fn func(*state)) {
	if t != nil {
		t.undo = append(t.undo, fn)
	}
}

func (st *state) putUser(t *txn, u models.User) {
	prev, had := st.users[u.ID]
	t.record(func(st *state) {
		if had {
			st.users[u.ID] = prev
		} else {
			delete(st.users, u.ID)
		}
	})
	st.users[u.ID] = u
}

func (st *state) dropUser(t *txn, id string) {
	prev, had := st.users[id]
	if !had {
		return
	}
	t.record(func(st *state) { st.users[id] = prev })
	delete(st.users, id)
}

func (st *state) putEdge(t *txn, e edge, seq int64) {
	if _, had := st.follows[e]; had {
		return
	}
	t.record(func(st *state) { delete(st.follows, e) })
	st.follows[e] = seq
}

func (st *state) dropEdge(t *txn, e edge) {
	seq, had := st.follows[e]
	if !had {
		return
	}
	t.record(func(st *state) { st.follows[e] = seq })
	delete(st.follows, e)
}

// putPost stores p. A seq of 0 keeps the existing insertion order.
func (st *state) putPost(t *txn, p models.Post, seq int64) {
	prev, had := st.posts[p.ID]
	prevSeq := st.postSeq[p.ID]
	t.record(func(st *state) {
		if had {
			st.posts[p.ID] = prev
			st.postSeq[p.ID] = prevSeq
		} else {
			delete(st.posts, p.ID)
			delete(st.postSeq, p.ID)
		}
	})
	st.posts[p.ID] = p
	if seq != 0 {
		st.postSeq[p.ID] = seq
	}
}

func (st *state) dropPost(t *txn, id string) {
	prev, had := st.posts[id]
	if !had {
		return
	}
	prevSeq := st.postSeq[id]
	t.record(func(st *state) {
		st.posts[id] = prev
		st.postSeq[id] = prevSeq
	})
	delete(st.posts, id)
	delete(st.postSeq, id)
}
