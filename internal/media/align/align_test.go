package align

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"reelsmith/internal/services"
)

func TestSplitSpeedFactorSingleStageInsideRange(t *testing.T) {
	for _, speed := range []float64{0.5, 0.75, 1.0, 1.2, 2.0} {
		factors := SplitSpeedFactor(speed)
		if len(factors) != 1 {
			t.Fatalf("speed %v: expected one stage, got %v", speed, factors)
		}
		if factors[0] != speed {
			t.Fatalf("speed %v: expected stage to equal speed, got %v", speed, factors[0])
		}
	}
}

func TestSplitSpeedFactorPeelsBoundaries(t *testing.T) {
	factors := SplitSpeedFactor(8.0)
	want := []float64{2.0, 2.0, 2.0}
	if len(factors) != len(want) {
		t.Fatalf("expected %v, got %v", want, factors)
	}
	for i := range want {
		if factors[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, factors)
		}
	}

	factors = SplitSpeedFactor(0.1)
	for i := 0; i < len(factors)-1; i++ {
		if factors[i] != 0.5 {
			t.Fatalf("expected every leading stage to be 0.5, got %v", factors)
		}
	}
	last := factors[len(factors)-1]
	if last < 0.5 || last > 2.0 {
		t.Fatalf("expected final stage inside [0.5, 2.0], got %v", last)
	}
}

func TestSplitSpeedFactorProductMatches(t *testing.T) {
	for _, speed := range []float64{0.01, 0.3, 0.5, 0.857, 1.0, 1.2, 3.7, 8.0, 100.0} {
		product := 1.0
		for _, factor := range SplitSpeedFactor(speed) {
			product *= factor
		}
		if math.Abs(product-speed) > 1e-6 {
			t.Fatalf("speed %v: product of stages %v drifted to %v", speed, SplitSpeedFactor(speed), product)
		}
	}
}

func TestSplitSpeedFactorRejectsNonPositive(t *testing.T) {
	if factors := SplitSpeedFactor(0); factors != nil {
		t.Fatalf("expected nil for zero speed, got %v", factors)
	}
	if factors := SplitSpeedFactor(-1); factors != nil {
		t.Fatalf("expected nil for negative speed, got %v", factors)
	}
}

func TestAlignRejectsNonPositiveTarget(t *testing.T) {
	aligner := New(48000, 2, "ffmpeg", "ffprobe")
	invoked := false
	aligner.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		invoked = true
		return nil
	})
	aligner.WithProbe(func(ctx context.Context, binary, path string) (float64, error) {
		invoked = true
		return 1, nil
	})

	_, err := aligner.Align(context.Background(), "in.wav", 0, Options{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if invoked {
		t.Fatal("no external process should run for an invalid target")
	}

	if _, err := aligner.Align(context.Background(), "in.wav", -3, Options{}); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for negative target, got %v", err)
	}
}

func TestAlignBuildsSinglePassFilterChain(t *testing.T) {
	aligner := New(44100, 1, "ffmpeg", "ffprobe")
	aligner.WithProbe(func(ctx context.Context, binary, path string) (float64, error) {
		return 24.0, nil
	})

	var got []string
	calls := 0
	aligner.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		calls++
		got = args
		return nil
	})

	out, err := aligner.Align(context.Background(), "/tmp/scene_1.wav", 3.0, Options{})
	if err != nil {
		t.Fatalf("Align: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single ffmpeg pass, got %d", calls)
	}
	if out != "/tmp/scene_1_aligned.wav" {
		t.Fatalf("unexpected output path %q", out)
	}

	joined := strings.Join(got, " ")
	if !strings.Contains(joined, "-af atempo=2.000,atempo=2.000,atempo=2.000") {
		t.Fatalf("expected chained atempo filter, got %q", joined)
	}
	if !strings.Contains(joined, "-ar 44100") || !strings.Contains(joined, "-ac 1") {
		t.Fatalf("expected explicit resampling args, got %q", joined)
	}
}

func TestAlignAppendsPitchStageLast(t *testing.T) {
	aligner := New(48000, 2, "ffmpeg", "ffprobe")
	aligner.WithProbe(func(ctx context.Context, binary, path string) (float64, error) {
		return 6.0, nil
	})
	var filter string
	aligner.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		for i, arg := range args {
			if arg == "-af" && i+1 < len(args) {
				filter = args[i+1]
			}
		}
		return nil
	})

	if _, err := aligner.Align(context.Background(), "voice.wav", 5.0, Options{PitchShift: 1.5}); err != nil {
		t.Fatalf("Align: %v", err)
	}
	if !strings.HasSuffix(filter, "rubberband=pitch=1.5") {
		t.Fatalf("expected pitch stage after tempo stages, got %q", filter)
	}
	if !strings.HasPrefix(filter, "atempo=1.200") {
		t.Fatalf("expected tempo stage first, got %q", filter)
	}
}

func TestAlignWrapsToolFailure(t *testing.T) {
	aligner := New(48000, 2, "ffmpeg", "ffprobe")
	aligner.WithProbe(func(ctx context.Context, binary, path string) (float64, error) {
		return 10.0, nil
	})
	aligner.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		return errors.New("exit status 1")
	})

	_, err := aligner.Align(context.Background(), "voice.wav", 5.0, Options{})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
}
