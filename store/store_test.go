package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/goliatone/go-wizard/api"
	"github.com/goliatone/go-wizard/api/apitest"
	"github.com/goliatone/go-wizard/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApartmentStoreCreatePrependsAndPublishes(t *testing.T) {
	fake := apitest.NewApartments()
	s := NewApartmentStore(fake)

	var topics []string
	s.Subscribe(func(e Event) { topics = append(topics, e.Topic) })

	first, err := s.Create(context.Background(), map[string]any{"apartment_name": "A"})
	require.NoError(t, err)
	second, err := s.Create(context.Background(), map[string]any{"apartment_name": "B"})
	require.NoError(t, err)

	mine := s.Mine()
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID(), mine[0].ID())
	assert.Equal(t, first.ID(), mine[1].ID())
	assert.False(t, s.Loading())
	assert.NoError(t, s.Err())
	assert.Contains(t, topics, TopicItems)
	assert.Contains(t, topics, TopicLoading)
}

func TestApartmentStoreUpdateReplacesCachedCopies(t *testing.T) {
	fake := apitest.NewApartments()
	s := NewApartmentStore(fake)
	ctx := context.Background()

	created, err := s.Create(ctx, map[string]any{"apartment_name": "A"})
	require.NoError(t, err)
	fake.Records[created.ID()] = api.Record{"id": created.ID(), "apartment_name": "A"}
	_, err = s.FetchByID(ctx, created.ID())
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.ID(), map[string]any{"apartment_name": "B"})
	require.NoError(t, err)
	assert.Equal(t, created.ID(), updated.ID())
	assert.Equal(t, created.ID(), s.Current().ID())
	assert.Equal(t, created.ID(), s.Mine()[0].ID())
}

func TestStoreRecordsLastError(t *testing.T) {
	fake := apitest.NewApartments()
	fake.FailOn("Mine", fmt.Errorf("offline"))
	s := NewApartmentStore(fake, WithLogger(flow.NopLogger{}))

	errs := 0
	s.SubscribeTopic(TopicError, func(Event) { errs++ })

	_, err := s.FetchMine(context.Background())
	require.Error(t, err)
	assert.EqualError(t, s.Err(), "offline")
	assert.Equal(t, 1, errs)

	fake.Clear("Mine")
	_, err = s.FetchMine(context.Background())
	require.NoError(t, err)
	assert.NoError(t, s.Err())
}

func TestNilSubscribersAreIgnored(t *testing.T) {
	fake := apitest.NewApartments()
	fake.FailOn("Mine", fmt.Errorf("offline"))
	s := NewApartmentStore(fake)

	all := s.Subscribe(nil)
	topic := s.SubscribeTopic(TopicError, nil)

	assert.NotPanics(t, func() {
		_, err := s.FetchMine(context.Background())
		require.Error(t, err)
	})
	all.Unsubscribe()
	topic.Unsubscribe()
}

func TestStoreRejectsEmptyIDs(t *testing.T) {
	s := NewApartmentStore(apitest.NewApartments())
	_, err := s.FetchByID(context.Background(), " ")
	require.Error(t, err)
	assert.True(t, flow.HasCode(err, ErrCodeInvalidID))

	p := NewPropertyStore(apitest.NewProperties())
	_, err = p.Update(context.Background(), "", nil)
	assert.True(t, flow.HasCode(err, ErrCodeInvalidID))
}

type noIDApartments struct{ *apitest.Apartments }

func (noIDApartments) Create(context.Context, map[string]any) (api.Record, error) {
	return api.Record{"ok": true}, nil
}

func TestCreateWithoutIDFails(t *testing.T) {
	s := NewApartmentStore(noIDApartments{apitest.NewApartments()})
	_, err := s.Create(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, flow.HasCode(err, ErrCodeMissingID))
	assert.Empty(t, s.Mine())
}

func TestPropertyStoreCreateAndChildren(t *testing.T) {
	fake := apitest.NewProperties()
	s := NewPropertyStore(fake)
	ctx := context.Background()

	rec, err := s.Create(ctx, map[string]any{"title": "x"})
	require.NoError(t, err)
	assert.Equal(t, "101", rec.ID())
	assert.Equal(t, "101", rec["id"])
	require.Len(t, s.Items(), 1)

	fake.ChildrenOf["101"] = []api.Record{{"id": "7"}}
	children, err := s.FetchChildren(ctx, "101")
	require.NoError(t, err)
	assert.Len(t, children, 1)
	assert.Len(t, s.Children(), 1)

	got, err := s.FetchByID(ctx, "101")
	require.NoError(t, err)
	assert.Equal(t, "x", got["title"])
	assert.Equal(t, "101", s.Current().ID())
}
