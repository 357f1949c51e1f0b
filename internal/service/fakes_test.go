package service

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/glycoguard/glycoguard/internal/model"
	"github.com/glycoguard/glycoguard/internal/oracle"
	"github.com/glycoguard/glycoguard/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeUserStore struct {
	mu         sync.Mutex
	byName     map[string]*model.User
	byID       map[string]*model.User
	createErr  error
	existsErr  error
	existCalls int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byName: make(map[string]*model.User),
		byID:   make(map[string]*model.User),
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byName[user.Username]; ok {
		return repository.ErrUsernameExists
	}
	f.byName[user.Username] = user
	f.byID[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.byName[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserStore) UserExists(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.existCalls++
	if f.existsErr != nil {
		return false, f.existsErr
	}
	_, ok := f.byID[id]
	return ok, nil
}

type fakeIdentityCache struct {
	mu      sync.Mutex
	known   map[string]bool
	readErr error
}

func newFakeIdentityCache() *fakeIdentityCache {
	return &fakeIdentityCache{known: make(map[string]bool)}
}

func (f *fakeIdentityCache) UserKnown(_ context.Context, userID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.readErr != nil {
		return false, f.readErr
	}
	return f.known[userID], nil
}

func (f *fakeIdentityCache) RememberUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.known[userID] = true
	return nil
}

type fakeClassifier struct {
	prob   float64
	err    error
	batch  []oracle.Result
	acc    float64
	accErr error
}

func (f *fakeClassifier) ClassifyOne(model.Features) (float64, error) {
	return f.prob, f.err
}

func (f *fakeClassifier) ClassifyBatch(rows []model.Features) ([]oracle.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.batch[:len(rows)], nil
}

func (f *fakeClassifier) Accuracy() (float64, error) {
	return f.acc, f.accErr
}

type fakeHistory struct {
	mu        sync.Mutex
	records   []*model.Prediction
	createErr error
	ctxErrs   []error
	lastQuery repository.PredictionFilter
}

func (f *fakeHistory) CreatePrediction(ctx context.Context, p *model.Prediction) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	if f.createErr != nil {
		return f.createErr
	}
	f.records = append(f.records, p)
	return nil
}

func (f *fakeHistory) ListPredictions(_ context.Context, userID string, filter repository.PredictionFilter) ([]*model.Prediction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastQuery = filter
	out := []*model.Prediction{}
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].UserID == userID {
			out = append(out, f.records[i])
		}
	}
	return out, nil
}
