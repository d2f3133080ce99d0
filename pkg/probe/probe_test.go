package probe

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRun(t *testing.T) {
	probes := []Probe{
		{
			Name:     "ok",
			Check:    func(ctx context.Context) error { return nil },
			Critical: true,
		},
		{
			Name:  "degraded",
			Check: func(ctx context.Context) error { return errors.New("minor issue") },
		},
	}

	results := Run(context.Background(), probes)

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Probe.Name != "ok" || results[0].Error != nil {
		t.Errorf("first result = %+v", results[0])
	}
	if results[1].Error == nil {
		t.Error("expected second probe to fail")
	}
}

func TestRun_Concurrent(t *testing.T) {
	// Four slow probes should finish in about one probe's time, not four.
	var probes []Probe
	for i := 0; i < 4; i++ {
		probes = append(probes, Probe{
			Name: "slow",
			Check: func(ctx context.Context) error {
				time.Sleep(50 * time.Millisecond)
				return nil
			},
		})
	}

	start := time.Now()
	Run(context.Background(), probes)
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("probes appear serialized: %v", elapsed)
	}
}

func TestRun_Timeout(t *testing.T) {
	probes := []Probe{{
		Name:    "hang",
		Timeout: 20 * time.Millisecond,
		Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	}}

	results := Run(context.Background(), probes)
	if !errors.Is(results[0].Error, context.DeadlineExceeded) {
		t.Errorf("error = %v", results[0].Error)
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		wantErr bool
	}{
		{
			name: "all pass",
			results: []Result{
				{Probe: Probe{Name: "p1", Critical: true}},
			},
			wantErr: false,
		},
		{
			name: "critical failure",
			results: []Result{
				{Probe: Probe{Name: "p1", Critical: true}, Error: errors.New("fail")},
			},
			wantErr: true,
		},
		{
			name: "non-critical failure",
			results: []Result{
				{Probe: Probe{Name: "p1"}, Error: errors.New("fail")},
			},
			wantErr: false,
		},
		{
			name: "mixed",
			results: []Result{
				{Probe: Probe{Name: "p1"}, Error: errors.New("fail")},
				{Probe: Probe{Name: "p2", Critical: true}, Error: errors.New("fail")},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Summarize(tt.results)
			if (err != nil) != tt.wantErr {
				t.Errorf("Summarize() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
