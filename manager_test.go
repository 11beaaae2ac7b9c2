package algoseek

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResourceManager_ExplicitSettings(t *testing.T) {
	t.Parallel()

	manager, err := NewResourceManager(&Settings{})
	require.NoError(t, err)
	assert.NotNil(t, manager)
}

func TestResourceManager_ListDataSources(t *testing.T) {
	t.Parallel()

	manager, err := NewResourceManager(&Settings{})
	require.NoError(t, err)

	assert.Equal(t, []DataSourceType{DataSourceArdaDB, DataSourceS3}, manager.ListDataSources())
}

func TestResourceManager_CreateDataSource_UnknownType(t *testing.T) {
	t.Parallel()

	manager, err := NewResourceManager(&Settings{})
	require.NoError(t, err)

	_, err = manager.CreateDataSource(context.Background(), DataSourceType("Tape"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUsage)
	assert.Contains(t, err.Error(), "Tape")
}
