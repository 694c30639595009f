package mongo

import (
	"testing"

	mongodb "facilio/pkg/db/mongo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestCollections_CoverEveryServiceCollection(t *testing.T) {
	var names []string
	for _, def := range Collections() {
		names = append(names, def.Name)
		assert.NotEmpty(t, def.Indexes, def.Name)
		require.Contains(t, def.Validator, "$jsonSchema", def.Name)
	}

	assert.Equal(t, []string{
		mongodb.FacilitiesCollection,
		mongodb.SubfacilitiesCollection,
		mongodb.EventsCollection,
		mongodb.NotificationsCollection,
	}, names)
}

func TestNotificationsIndexes_UniqueEventID(t *testing.T) {
	var found bool
	for _, idx := range NotificationsIndexes {
		keys, ok := idx.Keys.(bson.D)
		require.True(t, ok)
		if len(keys) == 1 && keys[0].Key == "event_id" {
			found = true
			require.NotNil(t, idx.Options)
			require.NotNil(t, idx.Options.Unique)
			assert.True(t, *idx.Options.Unique)
		}
	}
	assert.True(t, found, "notifications need a unique event_id index")
}
