package mock

import (
	"context"
	"errors"
	"math"
	"testing"
)

func TestMockEmbedderDeterminism(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	first, err := embedder.EmbedText(ctx, "air quality in Lisbon")
	if err != nil {
		t.Fatalf("failed to embed: %v", err)
	}
	second, err := embedder.EmbedText(ctx, "air quality in Lisbon")
	if err != nil {
		t.Fatalf("failed to embed: %v", err)
	}

	if len(first) != 384 {
		t.Fatalf("expected 384 dimensions, got %d", len(first))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("vectors differ at index %d: %v vs %v", i, first[i], second[i])
		}
	}
}

func TestMockEmbedderDistinctInputs(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	a, _ := embedder.EmbedText(ctx, "heatwave")
	b, _ := embedder.EmbedText(ctx, "flooding")

	same := true
	for i := range a {
		if a[i] != b[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected different texts to produce different vectors")
	}
}

func TestMockEmbedderUnitLength(t *testing.T) {
	embedder := NewMockEmbedder()

	vector, err := embedder.EmbedText(context.Background(), "smog over the valley")
	if err != nil {
		t.Fatalf("failed to embed: %v", err)
	}

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	if math.Abs(math.Sqrt(sumSquares)-1.0) > 0.001 {
		t.Errorf("expected unit-length vector, got norm %f", math.Sqrt(sumSquares))
	}
}

func TestMockEmbedderBatchMatchesSingle(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	single, _ := embedder.EmbedText(ctx, "rainfall")
	batch, err := embedder.EmbedTexts(ctx, []string{"rainfall", "drought"})
	if err != nil {
		t.Fatalf("failed to embed batch: %v", err)
	}
	if len(batch) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(batch))
	}
	for i := range single {
		if single[i] != batch[0][i] {
			t.Fatalf("batch vector diverges from single at index %d", i)
		}
	}
}

func TestMockEmbedderInjection(t *testing.T) {
	embedder := NewMockEmbedder()
	wantErr := errors.New("embedding service down")
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, wantErr
	}

	_, err := embedder.EmbedText(context.Background(), "anything")
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected injected error, got %v", err)
	}
	if embedder.CallCount() != 1 {
		t.Errorf("expected call count 1, got %d", embedder.CallCount())
	}

	embedder.Reset()
	if embedder.CallCount() != 0 {
		t.Errorf("expected call count reset to 0, got %d", embedder.CallCount())
	}
}
