// Package writer publishes the outcome of each upload run as a Parquet report.
package writer

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"
	"go.uber.org/fx"

	"github.com/tigerroll/surfin-transporter/pkg/batch/adapter/storage"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/application/port"
	config "github.com/tigerroll/surfin-transporter/pkg/batch/core/config"
	"github.com/tigerroll/surfin-transporter/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-transporter/pkg/batch/support/util/logger"
)

const moduleName = "writer"

// ReportRow is one group outcome as stored in the Parquet report.
type ReportRow struct {
	RunID        string `parquet:"name=run_id, type=BYTE_ARRAY, convertedtype=UTF8"`
	ActivityID   int64  `parquet:"name=activity_id, type=INT64"`
	UploaderName string `parquet:"name=uploader_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	UploaderType string `parquet:"name=uploader_type, type=BYTE_ARRAY, convertedtype=UTF8"`
	Identifier   string `parquet:"name=identifier, type=BYTE_ARRAY, convertedtype=UTF8"`
	Status       string `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8"`
	Action       string `parquet:"name=action, type=BYTE_ARRAY, convertedtype=UTF8"`
	Detail       string `parquet:"name=detail, type=BYTE_ARRAY, convertedtype=UTF8"`
	Error        string `parquet:"name=error, type=BYTE_ARRAY, convertedtype=UTF8"`
	StartedAt    int64  `parquet:"name=started_at, type=INT64, convertedtype=TIMESTAMP_MILLIS"`
	DurationMs   int64  `parquet:"name=duration_ms, type=INT64"`
	RunAborted   bool   `parquet:"name=run_aborted, type=BOOLEAN"`
}

// ReportWriter buffers the outcomes of a run and, once the run ends, writes
// them to one Parquet file uploaded through the configured storage connection.
// Files are laid out as <output_base_dir>/uploader=<name>/dt=<YYYY-MM-DD>/run_<run id>.parquet.
type ReportWriter struct {
	cfg      config.ReportConfig
	resolver storage.StorageConnectionResolver

	mu       sync.Mutex
	buffered []ReportRow
	// lastObject is the object name of the most recent report.
	lastObject string
}

// NewReportWriter creates a new ReportWriter.
func NewReportWriter(cfg config.ReportConfig, resolver storage.StorageConnectionResolver) (*ReportWriter, error) {
	if cfg.StorageRef == "" {
		return nil, exception.NewUploadError(moduleName, exception.KindConfiguration, "report writer requires a storage_ref", nil)
	}
	if cfg.OutputBaseDir == "" {
		cfg.OutputBaseDir = "reports"
	}
	if _, err := getCompressionCodec(cfg.CompressionType); err != nil {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "invalid report compression", err)
	}
	return &ReportWriter{cfg: cfg, resolver: resolver}, nil
}

// BeforeRun discards anything left from a previous run.
func (w *ReportWriter) BeforeRun(ctx context.Context, summary *model.RunSummary) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buffered = nil
}

// AfterRun buffers the final outcomes and publishes the report. A failed
// report never fails the run; it is logged instead.
func (w *ReportWriter) AfterRun(ctx context.Context, summary *model.RunSummary) {
	w.Write(summary)
	if err := w.Close(ctx, summary); err != nil {
		logger.Errorf("ReportWriter: failed to publish report for run '%s': %v", summary.RunID, err)
	}
}

// Write buffers one row per group outcome of summary.
func (w *ReportWriter) Write(summary *model.RunSummary) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, o := range summary.Outcomes {
		w.buffered = append(w.buffered, toRow(summary, o))
	}
	logger.Debugf("ReportWriter: buffered %d row(s) for run '%s'.", len(summary.Outcomes), summary.RunID)
}

// Close encodes the buffered rows and uploads them. Nothing is written when
// the buffer is empty.
func (w *ReportWriter) Close(ctx context.Context, summary *model.RunSummary) error {
	w.mu.Lock()
	rows := w.buffered
	w.buffered = nil
	w.mu.Unlock()

	if len(rows) == 0 {
		logger.Infof("ReportWriter: no outcomes for run '%s', skipping report.", summary.RunID)
		return nil
	}

	data, err := encode(rows, w.cfg.CompressionType)
	if err != nil {
		return err
	}

	conn, err := w.resolver.ResolveStorageConnection(ctx, w.cfg.StorageRef)
	if err != nil {
		return exception.NewUploadErrorf(moduleName, exception.KindConfiguration,
			"failed to resolve storage connection '%s'", w.cfg.StorageRef, err)
	}

	objectName := w.ObjectName(summary)
	logger.Debugf("ReportWriter: uploading %d bytes to %s/%s", len(data), w.cfg.StorageRef, objectName)
	if err := conn.Upload(ctx, w.cfg.Bucket, objectName, bytes.NewReader(data), "application/octet-stream"); err != nil {
		return exception.NewUploadErrorf(moduleName, exception.KindPersistence, "failed to upload report '%s'", objectName, err)
	}

	w.mu.Lock()
	w.lastObject = objectName
	w.mu.Unlock()
	logger.Infof("ReportWriter: report for run '%s' written to %s (%d rows).", summary.RunID, objectName, len(rows))
	return nil
}

// ObjectName returns the storage path of the report of summary.
func (w *ReportWriter) ObjectName(summary *model.RunSummary) string {
	return path.Join(
		w.cfg.OutputBaseDir,
		"uploader="+summary.UploaderName,
		"dt="+summary.StartTime.UTC().Format("2006-01-02"),
		fmt.Sprintf("run_%s.parquet", summary.RunID),
	)
}

// LastObject returns the object name of the most recently published report.
func (w *ReportWriter) LastObject() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastObject
}

func toRow(summary *model.RunSummary, o *model.GroupOutcome) ReportRow {
	row := ReportRow{
		RunID:        summary.RunID,
		ActivityID:   summary.ActivityID,
		UploaderName: summary.UploaderName,
		UploaderType: summary.UploaderType,
		Identifier:   o.Identifier,
		Status:       o.Status.String(),
		Action:       o.Action,
		Detail:       o.Detail,
		DurationMs:   o.Duration.Milliseconds(),
		RunAborted:   summary.Aborted,
	}
	if !o.StartTime.IsZero() {
		row.StartedAt = o.StartTime.UnixMilli()
	}
	if o.Err != nil {
		row.Error = exception.ExtractErrorMessage(o.Err)
	}
	return row
}

func encode(rows []ReportRow, compressionType string) ([]byte, error) {
	codec, err := getCompressionCodec(compressionType)
	if err != nil {
		return nil, exception.NewUploadErrorf(moduleName, exception.KindConfiguration, "invalid report compression", err)
	}

	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(ReportRow), 1)
	if err != nil {
		return nil, exception.NewUploadError(moduleName, exception.KindInvalidValue, "failed to create Parquet writer", err)
	}
	pw.CompressionType = codec

	var errs error
	for _, row := range rows {
		if err := pw.Write(row); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("row '%s': %w", row.Identifier, err))
		}
	}

	// The library panics on some malformed schemas during WriteStop.
	func() {
		defer func() {
			if r := recover(); r != nil {
				errs = multierror.Append(errs, fmt.Errorf("parquet writer panicked during WriteStop: %v", r))
			}
		}()
		if err := pw.WriteStop(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}()

	if errs != nil {
		return nil, exception.NewUploadError(moduleName, exception.KindInvalidValue, "failed to encode report", errs)
	}
	return buf.Bytes(), nil
}

// getCompressionCodec returns the Parquet compression codec from a string.
func getCompressionCodec(compressionType string) (parquet.CompressionCodec, error) {
	switch strings.ToUpper(compressionType) {
	case "SNAPPY":
		return parquet.CompressionCodec_SNAPPY, nil
	case "GZIP":
		return parquet.CompressionCodec_GZIP, nil
	case "NONE", "": // NONE or empty string means uncompressed
		return parquet.CompressionCodec_UNCOMPRESSED, nil
	default:
		return 0, fmt.Errorf("unsupported compression type: %s", compressionType)
	}
}

var _ port.RunListener = (*ReportWriter)(nil)

// ReportParams defines the dependencies for creating the report listener.
type ReportParams struct {
	fx.In
	Cfg      *config.Config
	Resolver storage.StorageConnectionResolver
}

// ReportListenerResult contributes the ReportWriter to the run_listeners group
// when reports are enabled.
type ReportListenerResult struct {
	fx.Out
	Listeners []port.RunListener `group:"run_listeners,flatten"`
}

// NewReportListener builds the ReportWriter when surfin.report.enabled is set.
func NewReportListener(p ReportParams) (ReportListenerResult, error) {
	if !p.Cfg.Surfin.Report.Enabled {
		return ReportListenerResult{}, nil
	}
	w, err := NewReportWriter(p.Cfg.Surfin.Report, p.Resolver)
	if err != nil {
		return ReportListenerResult{}, err
	}
	logger.Infof("ReportWriter: enabled (storage '%s', base dir '%s').", p.Cfg.Surfin.Report.StorageRef, p.Cfg.Surfin.Report.OutputBaseDir)
	return ReportListenerResult{Listeners: []port.RunListener{w}}, nil
}

// Module provides the optional Parquet report listener.
var Module = fx.Options(
	fx.Provide(NewReportListener),
)
