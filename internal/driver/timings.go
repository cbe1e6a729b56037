package driver

import (
	"encoding/json"
	"fmt"

	"safec/internal/diag"
	"safec/internal/observ"
	"safec/internal/source"
)

// timingReport is the JSON note carried by an ObsTimings diagnostic.
type timingReport struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

func (r timingReport) diagnostic() (diag.Diagnostic, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return diag.Diagnostic{}, err
	}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", r.Kind, r.TotalMS)
	if r.Path != "" {
		msg += ", " + r.Path
	}
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg)
	return d.WithNote(source.Span{}, string(data)), nil
}

// appendTimings records the compile timer into bag past its limit.
func appendTimings(bag *diag.Bag, path string, timer *observ.Timer) {
	if bag == nil || timer == nil {
		return
	}
	report := timer.Report()
	d, err := timingReport{Kind: "compile", Path: path, TotalMS: report.TotalMS, Phases: report.Phases}.diagnostic()
	if err != nil {
		return
	}
	bag.Append(d)
}
