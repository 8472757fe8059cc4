package query

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"rentListings/internal/models"
	"rentListings/internal/storage/mocks"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func flatFilter() models.ListingFilter {
	pt := models.PropertyFlat
	sel := models.DefaultFilterSelection()
	sel.PropertyType = &pt
	return models.NewListingFilter(sel, "")
}

func TestFetch(t *testing.T) {
	filter := flatFilter()
	stored := []models.Listing{{Id: "a", Price: 10000, PropertyType: models.PropertyFlat}}

	testCases := []struct {
		name          string
		generationErr error
		setup         func(db *mocks.Database, cache *mocks.Cache)
		want          []models.Listing
		dbCalls       int
	}{
		{
			name: "miss fills the cache",
			setup: func(db *mocks.Database, cache *mocks.Cache) {
				cache.On("GetListings", mock.Anything, int64(3), filter.Key()).Return(nil, redis.Nil)
				db.On("GetListings", mock.Anything, filter).Return(stored, nil)
				cache.On("PutListings", mock.Anything, int64(3), filter.Key(), stored).Return(nil)
			},
			want:    stored,
			dbCalls: 1,
		},
		{
			name: "hit",
			setup: func(db *mocks.Database, cache *mocks.Cache) {
				data, _ := json.Marshal(stored)
				cache.On("GetListings", mock.Anything, int64(3), filter.Key()).Return(data, nil)
			},
			want:    stored,
			dbCalls: 0,
		},
		{
			name: "cache outage falls through to the database",
			setup: func(db *mocks.Database, cache *mocks.Cache) {
				cache.On("GetListings", mock.Anything, int64(3), filter.Key()).Return(nil, errors.New("connection reset"))
				db.On("GetListings", mock.Anything, filter).Return(stored, nil)
				cache.On("PutListings", mock.Anything, int64(3), filter.Key(), stored).Return(errors.New("connection reset"))
			},
			want:    stored,
			dbCalls: 1,
		},
		{
			name: "undecodable entry is ignored",
			setup: func(db *mocks.Database, cache *mocks.Cache) {
				cache.On("GetListings", mock.Anything, int64(3), filter.Key()).Return([]byte("{not json"), nil)
				db.On("GetListings", mock.Anything, filter).Return(stored, nil)
				cache.On("PutListings", mock.Anything, int64(3), filter.Key(), stored).Return(nil)
			},
			want:    stored,
			dbCalls: 1,
		},
		{
			name: "unreadable generation bypasses the cache",
			generationErr: errors.New("connection reset"),
			setup: func(db *mocks.Database, cache *mocks.Cache) {
				db.On("GetListings", mock.Anything, filter).Return(stored, nil)
			},
			want:    stored,
			dbCalls: 1,
		},
		{
			name: "nothing found is an empty list",
			setup: func(db *mocks.Database, cache *mocks.Cache) {
				cache.On("GetListings", mock.Anything, int64(3), filter.Key()).Return(nil, redis.Nil)
				db.On("GetListings", mock.Anything, filter).Return(nil, nil)
				cache.On("PutListings", mock.Anything, int64(3), filter.Key(), []models.Listing{}).Return(nil)
			},
			want:    []models.Listing{},
			dbCalls: 1,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			db := new(mocks.Database)
			cache := new(mocks.Cache)
			cache.On("Generation", mock.Anything).Return(int64(3), tc.generationErr)
			tc.setup(db, cache)

			got, err := NewService(db, cache, nil, nil).Fetch(context.Background(), filter)
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Len(t, got, len(tc.want))
			for i := range tc.want {
				assert.Equal(t, tc.want[i].Id, got[i].Id)
			}

			db.AssertNumberOfCalls(t, "GetListings", tc.dbCalls)
			cache.AssertExpectations(t)
		})
	}
}

func TestFetchAfterInvalidateSkipsResultsReadBefore(t *testing.T) {
	filter := flatFilter()
	key := filter.Key()
	fresh := []models.Listing{{Id: "new"}}
	release := make(chan struct{})
	entered := make(chan struct{}, 1)

	db := new(mocks.Database)
	db.On("GetListings", mock.Anything, filter).
		Run(func(mock.Arguments) {
			entered <- struct{}{}
			<-release
		}).
		Return([]models.Listing{}, nil).Once()
	db.On("GetListings", mock.Anything, filter).Return(fresh, nil).Once()

	cache := new(mocks.Cache)
	cache.On("Generation", mock.Anything).Return(int64(0), nil).Once()
	cache.On("Generation", mock.Anything).Return(int64(1), nil)
	cache.On("GetListings", mock.Anything, int64(0), key).Return(nil, redis.Nil)
	cache.On("GetListings", mock.Anything, int64(1), key).Return(nil, redis.Nil)
	cache.On("PutListings", mock.Anything, int64(0), key, []models.Listing{}).Return(nil)
	cache.On("PutListings", mock.Anything, int64(1), key, fresh).Return(nil)
	cache.On("InvalidateListings", mock.Anything).Return(nil)

	svc := NewService(db, cache, nil, nil)

	staleDone := make(chan []models.Listing, 1)
	go func() {
		l, _ := svc.Fetch(context.Background(), filter)
		staleDone <- l
	}()
	<-entered

	// A listing is created while the first read is still in flight.
	svc.Invalidate(context.Background())

	got, err := svc.Fetch(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, got, 1, "a fetch issued after invalidation must not join the older read")
	assert.Equal(t, "new", got[0].Id)

	close(release)
	assert.Empty(t, <-staleDone)

	db.AssertNumberOfCalls(t, "GetListings", 2)
	cache.AssertExpectations(t)
	cache.AssertNotCalled(t, "PutListings", mock.Anything, int64(1), key, []models.Listing{})
}

func TestFetchWithoutCache(t *testing.T) {
	db := new(mocks.Database)
	db.On("GetListings", mock.Anything, mock.Anything).Return(nil, errors.New("db down"))

	_, err := NewService(db, nil, nil, nil).Fetch(context.Background(), flatFilter())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestFetchSharesConcurrentCalls(t *testing.T) {
	filter := flatFilter()
	release := make(chan struct{})
	entered := make(chan struct{}, 1)

	db := new(mocks.Database)
	db.On("GetListings", mock.Anything, filter).
		Run(func(mock.Arguments) {
			entered <- struct{}{}
			<-release
		}).
		Return([]models.Listing{{Id: "a"}}, nil)

	svc := NewService(db, nil, nil, nil)

	const callers = 5
	var wg sync.WaitGroup
	results := make([][]models.Listing, callers)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = svc.Fetch(context.Background(), filter)
	}()
	<-entered

	for i := 1; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.Fetch(context.Background(), filter)
		}(i)
	}

	// Give the followers time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	db.AssertNumberOfCalls(t, "GetListings", 1)
	for _, r := range results {
		require.Len(t, r, 1)
		assert.Equal(t, "a", r[0].Id)
	}
}

func TestInvalidate(t *testing.T) {
	cache := new(mocks.Cache)
	cache.On("InvalidateListings", mock.Anything).Return(errors.New("ignored")).Once()

	NewService(new(mocks.Database), cache, nil, nil).Invalidate(context.Background())
	cache.AssertExpectations(t)

	assert.NotPanics(t, func() {
		NewService(new(mocks.Database), nil, nil, nil).Invalidate(context.Background())
	})
}

func TestViewDiscardsSupersededResults(t *testing.T) {
	slow := flatFilter()
	fast := models.NewListingFilter(models.DefaultFilterSelection(), "")

	release := make(chan struct{})
	entered := make(chan struct{}, 1)

	db := new(mocks.Database)
	db.On("GetListings", mock.Anything, slow).
		Run(func(mock.Arguments) {
			entered <- struct{}{}
			<-release
		}).
		Return([]models.Listing{{Id: "slow"}}, nil)
	db.On("GetListings", mock.Anything, fast).Return([]models.Listing{{Id: "fast"}}, nil)

	view := NewView(NewService(db, nil, nil, nil))

	type outcome struct {
		listings []models.Listing
		err      error
	}
	slowDone := make(chan outcome, 1)
	go func() {
		l, err := view.Load(context.Background(), slow)
		slowDone <- outcome{l, err}
	}()
	<-entered

	got, err := view.Load(context.Background(), fast)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "fast", got[0].Id)

	close(release)
	res := <-slowDone
	assert.ErrorIs(t, res.err, ErrSuperseded)
	assert.Nil(t, res.listings)
}

func TestViewRepeatedFilterIsNotSuperseded(t *testing.T) {
	filter := flatFilter()
	db := new(mocks.Database)
	db.On("GetListings", mock.Anything, filter).Return([]models.Listing{{Id: "a"}}, nil)

	view := NewView(NewService(db, nil, nil, nil))
	for i := 0; i < 3; i++ {
		got, err := view.Load(context.Background(), filter)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
}
