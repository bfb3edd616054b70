package lineresolver

// DriftSeverity tags how bad line-mapping drift is for one run.
type DriftSeverity string

const (
	DriftNone     DriftSeverity = "none"
	DriftWarning  DriftSeverity = "warning"
	DriftCritical DriftSeverity = "critical"
)

// DriftSignal summarizes how much of a normalization pass had to snap or
// drop findings rather than place them exactly.
type DriftSignal struct {
	DegradationPercent float64
	Severity           DriftSeverity
}

// DriftThresholds configures when drift becomes worth surfacing.
type DriftThresholds struct {
	WarningPercent  float64
	CriticalPercent float64
}

// DefaultDriftThresholds matches typical CI noise tolerance: under 10%
// snapped/dropped is unremarkable, 10-30% warrants a summary note, above
// 30% suppresses inline comments entirely.
func DefaultDriftThresholds() DriftThresholds {
	return DriftThresholds{WarningPercent: 10, CriticalPercent: 30}
}

// ComputeDrift derives a DriftSignal from a NormalizeForDiff pass. When the
// signal is Critical, callers should suppress inline comments and explain
// why in the summary instead.
func ComputeDrift(stats NormalizeStats, thresholds DriftThresholds) DriftSignal {
	total := stats.Valid + stats.Snapped + stats.Dropped
	if total == 0 {
		return DriftSignal{Severity: DriftNone}
	}

	degraded := stats.Snapped + stats.Dropped
	pct := float64(degraded) / float64(total) * 100

	severity := DriftNone
	switch {
	case pct > thresholds.CriticalPercent:
		severity = DriftCritical
	case pct >= thresholds.WarningPercent:
		severity = DriftWarning
	}
	return DriftSignal{DegradationPercent: pct, Severity: severity}
}
