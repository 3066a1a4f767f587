package services

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/josegonzalo071-svg/house-backend/internal/common"
	"github.com/josegonzalo071-svg/house-backend/internal/server/models"
)

type fakeItemsRepo struct {
	byKey map[string]*models.Item
}

func newFakeItemsRepo() *fakeItemsRepo {
	return &fakeItemsRepo{byKey: make(map[string]*models.Item)}
}

func (f *fakeItemsRepo) key(owner, name string) string { return owner + "\x00" + name }

func (f *fakeItemsRepo) Upsert(ctx context.Context, item *models.Item) (*models.Item, error) {
	k := f.key(item.Owner, item.Name)
	if prev, ok := f.byKey[k]; ok {
		prev.Mime = item.Mime
		prev.Data = item.Data
		return prev, nil
	}
	item.CreatedAt = time.Now()
	f.byKey[k] = item
	return item, nil
}

func (f *fakeItemsRepo) List(ctx context.Context, owner string) ([]*models.Item, error) {
	var result []*models.Item
	for _, item := range f.byKey {
		if item.Owner == owner {
			meta := *item
			meta.Data = nil
			result = append(result, &meta)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (f *fakeItemsRepo) Get(ctx context.Context, owner, name string) (*models.Item, error) {
	if item, ok := f.byKey[f.key(owner, name)]; ok {
		return item, nil
	}
	return nil, common.ErrNotFound
}

func (f *fakeItemsRepo) Delete(ctx context.Context, owner, name string) error {
	k := f.key(owner, name)
	if _, ok := f.byKey[k]; !ok {
		return common.ErrNotFound
	}
	delete(f.byKey, k)
	return nil
}

func (f *fakeItemsRepo) ListWithData(ctx context.Context, owner string) ([]*models.Item, error) {
	var result []*models.Item
	for _, item := range f.byKey {
		if item.Owner == owner {
			result = append(result, item)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func newItemFixture(t *testing.T) (*ItemService, *fakeRepoManager) {
	t.Helper()
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := &fakeRepoManager{u: newFakeUsersRepo(), r: &fakeTokensRepo{}, i: newFakeItemsRepo()}
	return NewItemService(db, rm, testLogger(), testConfig()), rm
}

func TestItemStore_AssignsIDAndDefaultMime(t *testing.T) {
	svc, _ := newItemFixture(t)

	item, err := svc.Store(context.Background(), "alice", "notes", "", []byte("hello"))
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "application/octet-stream", item.Mime)
}

func TestItemStore_Validation(t *testing.T) {
	svc, _ := newItemFixture(t)

	_, err := svc.Store(context.Background(), "", "notes", "text/plain", nil)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = svc.Store(context.Background(), "alice", "", "text/plain", nil)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestItemStore_ReplacesByName(t *testing.T) {
	svc, _ := newItemFixture(t)

	first, err := svc.Store(context.Background(), "alice", "notes", "text/plain", []byte("v1"))
	require.NoError(t, err)
	second, err := svc.Store(context.Background(), "alice", "notes", "text/markdown", []byte("v2"))
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID, "upsert must keep the original id")

	got, err := svc.Get(context.Background(), "alice", "notes")
	require.NoError(t, err)
	assert.Equal(t, "text/markdown", got.Mime)
	assert.Equal(t, []byte("v2"), got.Data)
}

func TestItemList_OwnerScopedMetadata(t *testing.T) {
	svc, _ := newItemFixture(t)

	_, err := svc.Store(context.Background(), "alice", "a", "text/plain", []byte("payload"))
	require.NoError(t, err)
	_, err = svc.Store(context.Background(), "bob", "b", "text/plain", []byte("other"))
	require.NoError(t, err)

	got, err := svc.List(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)
	assert.Nil(t, got[0].Data, "listing must not carry payloads")
}

func TestItemGet_NotFound(t *testing.T) {
	svc, _ := newItemFixture(t)

	_, err := svc.Get(context.Background(), "alice", "ghost")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestItemDelete(t *testing.T) {
	svc, _ := newItemFixture(t)

	_, err := svc.Store(context.Background(), "alice", "notes", "text/plain", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), "alice", "notes"))
	assert.ErrorIs(t, svc.Delete(context.Background(), "alice", "notes"), common.ErrNotFound)
}
