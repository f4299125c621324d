package memory

import (
	"context"
	"errors"
	"sort"

	"github.com/StormRens/Fake-Twitter/internal/server/models"
)

var errSelfEdge = errors.New("follower and followee must differ")

type followRepo struct {
	s  *Store
	tx *txn
}

func (r *followRepo) Add(_ context.Context, followerID, followeeID string) error {
	if followerID == followeeID {
		return errSelfEdge
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e := edge{follower: followerID, followee: followeeID}
	if _, ok := r.s.st.follows[e]; !ok {
		r.s.st.putEdge(r.tx, e, r.s.nextSeq())
	}
	return nil
}

func (r *followRepo) Remove(_ context.Context, followerID, followeeID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.st.dropEdge(r.tx, edge{follower: followerID, followee: followeeID})
	return nil
}

func (r *followRepo) Exists(_ context.Context, followerID, followeeID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, ok := r.s.st.follows[edge{follower: followerID, followee: followeeID}]
	return ok, nil
}

func (r *followRepo) Followers(_ context.Context, userID string) ([]models.UserSummary, error) {
	return r.collect(func(e edge) (string, bool) { return e.follower, e.followee == userID }), nil
}

func (r *followRepo) Following(_ context.Context, userID string) ([]models.UserSummary, error) {
	return r.collect(func(e edge) (string, bool) { return e.followee, e.follower == userID }), nil
}

func (r *followRepo) Counts(_ context.Context, userID string) (int, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var followers, following int
	for e := range r.s.st.follows {
		if e.followee == userID {
			followers++
		}
		if e.follower == userID {
			following++
		}
	}
	return followers, following, nil
}

func (r *followRepo) DeleteAllFor(_ context.Context, userID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for e := range r.s.st.follows {
		if e.follower == userID || e.followee == userID {
			r.s.st.dropEdge(r.tx, e)
		}
	}
	return nil
}

// collect returns the users on the other end of matching edges, oldest edge first.
func (r *followRepo) collect(match func(edge) (string, bool)) []models.UserSummary {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	type hit struct {
		seq int64
		u   models.UserSummary
	}
	var hits []hit
	for e, seq := range r.s.st.follows {
		id, ok := match(e)
		if !ok {
			continue
		}
		if u, found := r.s.st.users[id]; found {
			hits = append(hits, hit{seq: seq, u: u.Summary()})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].seq < hits[j].seq })

	result := make([]models.UserSummary, 0, len(hits))
	for _, h := range hits {
		result = append(result, h.u)
	}
	return result
}
