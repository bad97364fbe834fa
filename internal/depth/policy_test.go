package depth

import "testing"

func TestPolicy_Decide(t *testing.T) {
	p := DefaultPolicy()

	tests := []struct {
		name   string
		report ZoneReport
		want   Directive
	}{
		{
			name:   "all clear",
			report: ZoneReport{Left: 3000, Center: 3000, Right: 3000},
			want:   DirectiveClear,
		},
		{
			name:   "all unknown",
			report: ZoneReport{Left: UnknownDistance, Center: UnknownDistance, Right: UnknownDistance},
			want:   DirectiveClear,
		},
		{
			name:   "obstacle ahead",
			report: ZoneReport{Left: 3000, Center: 500, Right: 3000},
			want:   DirectiveStop,
		},
		{
			name:   "obstacle left only",
			report: ZoneReport{Left: 1200, Center: 3000, Right: 3000},
			want:   DirectiveWarnLeft,
		},
		{
			name:   "obstacle right only",
			report: ZoneReport{Left: 3000, Center: 3000, Right: 1200},
			want:   DirectiveWarnRight,
		},
		{
			name:   "both sides close",
			report: ZoneReport{Left: 1200, Center: 3000, Right: 1200},
			want:   DirectiveClear,
		},
		{
			name:   "exactly at stop threshold",
			report: ZoneReport{Left: 3000, Center: 900, Right: 3000},
			want:   DirectiveClear,
		},
		{
			name:   "just under stop threshold",
			report: ZoneReport{Left: 3000, Center: 899, Right: 3000},
			want:   DirectiveStop,
		},
		{
			name:   "side exactly at warn threshold",
			report: ZoneReport{Left: 1500, Center: 3000, Right: 3000},
			want:   DirectiveClear,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Decide(tt.report); got != tt.want {
				t.Errorf("Decide(%+v) = %v, want %v", tt.report, got, tt.want)
			}
		})
	}
}

func TestPolicy_StopHasPriority(t *testing.T) {
	// Whenever the center zone is inside stopping distance, the directive
	// is stop no matter what the sides report.
	p := DefaultPolicy()

	sides := []int32{100, 900, 1200, 1500, 3000, UnknownDistance}
	for _, l := range sides {
		for _, r := range sides {
			report := ZoneReport{Left: l, Center: 500, Right: r}
			if got := p.Decide(report); got != DirectiveStop {
				t.Errorf("Decide(%+v) = %v, want DirectiveStop", report, got)
			}
		}
	}
}

func TestDirective_String(t *testing.T) {
	tests := []struct {
		d    Directive
		want string
	}{
		{DirectiveClear, "clear"},
		{DirectiveStop, "stop"},
		{DirectiveWarnLeft, "warn_left"},
		{DirectiveWarnRight, "warn_right"},
	}
	for _, tt := range tests {
		if got := tt.d.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestAnalyzeThenDecide_CenterObstacle(t *testing.T) {
	// End to end over the two stages: center filled at 50cm, sides at 3m.
	a := NewAnalyzer(DefaultParams())
	p := DefaultPolicy()

	res := a.Analyze(fillFrame(240, 180, 3000, 500, 3000))
	if res.Status != StatusOK {
		t.Fatalf("Status = %v, want StatusOK", res.Status)
	}
	if got := p.Decide(res.Report); got != DirectiveStop {
		t.Errorf("Decide() = %v, want DirectiveStop", got)
	}
}

func TestAnalyzeThenDecide_EmptyFrameClear(t *testing.T) {
	a := NewAnalyzer(DefaultParams())
	p := DefaultPolicy()

	res := a.Analyze(&Frame{Width: 120, Height: 90, Data: make([]uint16, 120*90)})
	if got := p.Decide(res.Report); got != DirectiveClear {
		t.Errorf("Decide() = %v, want DirectiveClear", got)
	}
}
