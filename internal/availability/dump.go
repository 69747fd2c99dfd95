package availability

import (
	"cursedcompass-backend/internal/components/assert"
	"cursedcompass-backend/internal/components/chrono"
	"cursedcompass-backend/internal/components/telemetry"
	"cursedcompass-backend/internal/scrapers/ipms"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	report_dump_save = "dump.save"
)

// ResponseDump keeps raw availability responses for offline inspection.
//
// Save returns where the body was kept or an empty string, it must never fail a check.
type ResponseDump interface {
	Save(req ipms.AvailabilityRequest, body []byte) string
}

// FilesystemDump writes each body into its own html file under a directory.
type FilesystemDump struct {
	dir    string
	prefix string
	time   chrono.TimeAPI
	tel    telemetry.API
}

func NewFilesystemDump(dir, prefix string, clock chrono.TimeAPI, tel telemetry.API) FilesystemDump {
	assert.NotEmptyStr(dir)
	assert.NotNil(clock)
	assert.NotNil(tel)
	return FilesystemDump{
		dir:    dir,
		prefix: prefix,
		time:   clock,
		tel:    telemetry.NewScopedAPI("availability_dump", tel),
	}
}

var timestampReplacer = strings.NewReplacer(":", "-", ".", "-")

// Filename returns the name a body is saved under, it sorts by request dates then by time.
func (d FilesystemDump) Filename(req ipms.AvailabilityRequest) string {
	timestamp := timestampReplacer.Replace(d.time.Now().Format("2006-01-02T15:04:05.000Z07:00"))
	return fmt.Sprintf(
		"%s_%s_to_%s_%s.html",
		d.prefix, req.CheckInString(), req.CheckOutString(), timestamp,
	)
}

func (d FilesystemDump) Save(req ipms.AvailabilityRequest, body []byte) string {
	err := os.MkdirAll(d.dir, 0777)
	if err != nil {
		d.tel.ReportWarning(report_dump_save, err)
		return ""
	}

	path := filepath.Join(d.dir, d.Filename(req))
	err = os.WriteFile(path, body, 0644)
	if err != nil {
		d.tel.ReportWarning(report_dump_save, err)
		return ""
	}

	d.tel.ReportDebug(report_dump_save, path, len(body))
	return path
}
