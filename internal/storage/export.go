package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/san-kum/physim/internal/sim"
)

var nan = math.NaN()

type ExportData struct {
	Run       Run                `json:"run"`
	Steps     int                `json:"steps"`
	SettledAt float64            `json:"settled_at"`
	Times     []float64          `json:"times"`
	Active    []int              `json:"active"`
	Metrics   map[string]float64 `json:"metrics"`
	Final     []sim.ObjectState  `json:"final"`
}

func newExportData(run Run, result *sim.Result) ExportData {
	return ExportData{
		Run:       run,
		Steps:     result.StepsTaken,
		SettledAt: result.SettledAt,
		Times:     result.Times,
		Active:    result.Active,
		Metrics:   result.Metrics,
		Final:     result.Final,
	}
}

func ExportJSON(path string, run Run, result *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteJSON(file, run, result)
}

func WriteJSON(w io.Writer, run Run, result *sim.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(newExportData(run, result))
}
