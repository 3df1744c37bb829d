package csvcore

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type person struct {
	Name string
	Age  int
}

func TestDecodeSimple(t *testing.T) {
	input := "Name,Age\nAlice,30\nBob,25\n"
	cfg := NewDecodeConfig()

	people, err := Decode[person](context.Background(), strings.NewReader(input), cfg)
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, person{Name: "Alice", Age: 30}, people[0])
	assert.Equal(t, person{Name: "Bob", Age: 25}, people[1])
}

func TestDecodeHeaderless(t *testing.T) {
	input := "Alice,30\nBob,25\n"
	cfg := NewDecodeConfig(WithHasHeaders(false), WithIndexMapping(map[int]string{0: "Name", 1: "Age"}))

	people, err := Decode[person](context.Background(), strings.NewReader(input), cfg)
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, "Alice", people[0].Name)
	assert.Equal(t, 30, people[0].Age)
}

func TestDecodeMissingColumnError(t *testing.T) {
	input := "Name\nAlice\n"
	cfg := NewDecodeConfig()

	_, err := Decode[person](context.Background(), strings.NewReader(input), cfg)
	require.Error(t, err)
	var rowErr *RowErrors
	require.ErrorAs(t, err, &rowErr)
}

func TestDecodeSnakeCaseKeyStrategy(t *testing.T) {
	type dest struct {
		FullName string
		Age      int
	}
	input := "full_name,age\nCarol,40\n"
	cfg := NewDecodeConfig(WithKeyStrategy(KeyStrategy{Kind: KeyFromSnakeCase}))

	out, err := Decode[dest](context.Background(), strings.NewReader(input), cfg)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Carol", out[0].FullName)
	assert.Equal(t, 40, out[0].Age)
}

func TestStreamDecoderProgressAndClose(t *testing.T) {
	input := "Name,Age\nAlice,30\n"
	cfg := NewDecodeConfig()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d, err := NewStreamDecoder[person](ctx, strings.NewReader(input), cfg)
	require.NoError(t, err)

	var got []person
	for res := range d.Results() {
		require.NoError(t, res.Err)
		got = append(got, res.Value)
	}
	require.NoError(t, d.Close())
	assert.Len(t, got, 1)
	// One row is below the progress cadence, so Progress closes without an update.
	_, ok := <-d.Progress()
	assert.False(t, ok)
}

func TestDecodeParallelPreservesOrder(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("Name,Age\n")
	names := []string{"Alice", "Bob", "Carol", "Dan", "Eve", "Frank"}
	for i, n := range names {
		sb.WriteString(n)
		sb.WriteString(",")
		sb.WriteString(string(rune('0' + i)))
		sb.WriteString("\n")
	}
	cfg := NewDecodeConfig()
	cfg.Parallel.Parallelism = 3
	cfg.Parallel.ChunkSizeBytes = 20
	cfg.Parallel.PreserveOrder = true

	out, err := DecodeParallelBytes[person](context.Background(), []byte(sb.String()), cfg)
	require.NoError(t, err)
	require.Len(t, out, len(names))
	for i, n := range names {
		assert.Equal(t, n, out[i].Name)
	}
}

// TestDecodeRespectsBackpressureWatermark forces the backpressure controller
// into its parked state almost immediately (a tiny memory budget against
// many rows) and reads slowly from Results. If release() were never called
// to wake the parked producer, this would hang until the context deadline
// and fail; it must instead drain every row.
func TestDecodeRespectsBackpressureWatermark(t *testing.T) {
	const rows = 2000
	var sb strings.Builder
	sb.WriteString("Name,Age\n")
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&sb, "person%d,%d\n", i, i%100)
	}

	cfg := NewDecodeConfig(WithMemoryLimitConfig(MemoryLimitConfig{
		BudgetBytes:       10,
		EstimatedRowBytes: 1,
		BatchSize:         1,
		UseWatermarks:     true,
		HighFrac:          0.9,
		LowFrac:           0.5,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	d, err := NewStreamDecoder[person](ctx, strings.NewReader(sb.String()), cfg)
	require.NoError(t, err)
	defer d.Close()

	var got []person
	for res := range d.Results() {
		require.NoError(t, res.Err)
		got = append(got, res.Value)
	}
	require.Len(t, got, rows)
}
