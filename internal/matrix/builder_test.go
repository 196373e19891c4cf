package matrix

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echobench/echobench/internal/domain"
	apperrors "github.com/echobench/echobench/internal/pkg/errors"
)

func TestBuildCartesianProduct(t *testing.T) {
	models := domain.SpecsFromNames([]string{"identity", "uniform"})
	datasets := domain.SpecsFromNames([]string{"d1", "d2", "d3"})
	metrics := domain.SpecsFromNames([]string{"m1", "m2"})

	tasks, err := Build(models, datasets, metrics, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 6)

	// Model-major order: all datasets for the first model, then the next.
	assert.Equal(t, "identity", tasks[0].Model.Name)
	assert.Equal(t, "d1", tasks[0].Dataset.Name)
	assert.Equal(t, "identity", tasks[2].Model.Name)
	assert.Equal(t, "d3", tasks[2].Dataset.Name)
	assert.Equal(t, "uniform", tasks[3].Model.Name)
	assert.Equal(t, "d1", tasks[3].Dataset.Name)

	// Every task carries the full metric set.
	for _, task := range tasks {
		assert.Equal(t, []string{"m1", "m2"}, task.MetricNames())
	}
}

func TestBuildDeduplicates(t *testing.T) {
	models := []domain.Spec{
		domain.ByName("identity"),
		domain.ByName("identity"),
		domain.WithOptions("uniform", map[string]any{"seed": 1}),
		domain.WithOptions("uniform", map[string]any{"seed": 1}),
		domain.WithOptions("uniform", map[string]any{"seed": 2}),
	}
	datasets := domain.SpecsFromNames([]string{"d1", "d1"})
	metrics := domain.SpecsFromNames([]string{"m1", "m1"})

	tasks, err := Build(models, datasets, metrics, 0)
	require.NoError(t, err)
	require.Len(t, tasks, 3, "3 distinct models x 1 dataset")
	assert.Equal(t, "identity", tasks[0].Model.Name)
	for _, task := range tasks {
		assert.Len(t, task.Metrics, 1)
	}
}

func TestBuildEmptyMatrix(t *testing.T) {
	models := domain.SpecsFromNames([]string{"identity"})
	datasets := domain.SpecsFromNames([]string{"d1"})
	metrics := domain.SpecsFromNames([]string{"m1"})

	tests := []struct {
		name                      string
		models, datasets, metrics []domain.Spec
	}{
		{"no models", nil, datasets, metrics},
		{"no datasets", models, nil, metrics},
		{"no metrics", models, datasets, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.models, tt.datasets, tt.metrics, 0)
			require.Error(t, err)
			assert.True(t, apperrors.IsEmptyMatrix(err))
		})
	}
}

func TestBuildNegativeMaxEntities(t *testing.T) {
	_, err := Build(
		domain.SpecsFromNames([]string{"identity"}),
		domain.SpecsFromNames([]string{"d1"}),
		domain.SpecsFromNames([]string{"m1"}),
		-1,
	)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestBuildPropagatesMaxEntities(t *testing.T) {
	tasks, err := Build(
		domain.SpecsFromNames([]string{"identity"}),
		domain.SpecsFromNames([]string{"d1"}),
		domain.SpecsFromNames([]string{"m1"}),
		5,
	)
	require.NoError(t, err)
	assert.Equal(t, 5, tasks[0].MaxEntities)
}

func TestBuildDoesNotMutateInputs(t *testing.T) {
	models := []domain.Spec{domain.ByName("identity"), domain.ByName("identity")}
	datasets := domain.SpecsFromNames([]string{"d1"})
	metrics := domain.SpecsFromNames([]string{"m1"})

	_, err := Build(models, datasets, metrics, 0)
	require.NoError(t, err)
	assert.Len(t, models, 2, "caller slice is left alone")
}
