package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"market-breadth/src/helpers"
	"market-breadth/src/logger"
	"market-breadth/src/models"

	"github.com/xuri/excelize/v2"
)

const excelSheet = "stats"

// -----------------------------------------------------------------------------
// ExcelStore appends snapshots to one workbook per month, named
// <prefix>_YYYY-MM.xlsx, with a header row of models.SnapshotColumns.
// -----------------------------------------------------------------------------

type ExcelStore struct {
	Config *models.MConfig
	Logger *logger.Logger
	Dir    string
	Prefix string

	mu sync.Mutex
}

// -----------------------------------------------------------------------------

func NewExcelStore(cfg *models.MConfig, log *logger.Logger) *ExcelStore {
	return &ExcelStore{
		Config: cfg,
		Logger: log,
		Dir:    cfg.Storage.DataDir,
		Prefix: cfg.Storage.FilePrefix,
	}
}

// -----------------------------------------------------------------------------

func (s *ExcelStore) Initialize() error {
	if err := os.MkdirAll(s.Dir, 0755); err != nil {
		return helpers.NewDatabaseError("create data dir", err)
	}
	s.Logger.Info("Excel store ready in %s", s.Dir)
	return nil
}

// -----------------------------------------------------------------------------

// FileFor returns the workbook path holding snapshots of t's month.
func (s *ExcelStore) FileFor(t time.Time) string {
	month := t.In(models.MarketLocation).Format("2006-01")
	return filepath.Join(s.Dir, fmt.Sprintf("%s_%s.xlsx", s.Prefix, month))
}

// -----------------------------------------------------------------------------

func (s *ExcelStore) SaveSnapshot(snap models.MBreadthSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.FileFor(snap.CapturedAt)
	f, err := s.openOrCreate(path)
	if err != nil {
		return helpers.NewDatabaseError("open workbook", err)
	}
	defer f.Close()

	rows, err := f.GetRows(excelSheet)
	if err != nil {
		return helpers.NewDatabaseError("read workbook", err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return err
	}
	row := snap.Row()
	if err := f.SetSheetRow(excelSheet, cell, &row); err != nil {
		return helpers.NewDatabaseError("append row", err)
	}
	if err := f.SaveAs(path); err != nil {
		return helpers.NewDatabaseError("save workbook", err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *ExcelStore) openOrCreate(path string) (*excelize.File, error) {
	if _, err := os.Stat(path); err == nil {
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, err
		}
		if idx, err := f.GetSheetIndex(excelSheet); err != nil || idx < 0 {
			f.Close()
			return nil, fmt.Errorf("%s has no %q sheet", filepath.Base(path), excelSheet)
		}
		return f, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", excelSheet); err != nil {
		f.Close()
		return nil, err
	}
	header := make([]interface{}, len(models.SnapshotColumns))
	for i, col := range models.SnapshotColumns {
		header[i] = col
	}
	if err := f.SetSheetRow(excelSheet, "A1", &header); err != nil {
		f.Close()
		return nil, err
	}
	_ = f.SetColWidth(excelSheet, "A", "A", 20)
	s.Logger.Info("Created workbook %s", filepath.Base(path))
	return f, nil
}

// -----------------------------------------------------------------------------

// readFile loads every snapshot of one workbook. A missing file is empty.
func (s *ExcelStore) readFile(path string) ([]models.MBreadthSnapshot, error) {
	f, err := excelize.OpenFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(excelSheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, nil
	}

	header := rows[0]
	out := make([]models.MBreadthSnapshot, 0, len(rows)-1)
	for n, cells := range rows[1:] {
		rec := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(cells) {
				rec[col] = cells[i]
			}
		}
		snap, err := models.SnapshotFromRecord(rec)
		if err != nil {
			s.Logger.Warning("%s row %d skipped: %v", filepath.Base(path), n+2, err)
			continue
		}
		out = append(out, snap)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

// QueryRange reads every monthly workbook overlapping [start, end].
func (s *ExcelStore) QueryRange(start, end time.Time) ([]models.MBreadthSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, to := dayKey(start), dayKey(end)
	first := startOfDay(start)
	month := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, models.MarketLocation)
	last := startOfDay(end)

	var out []models.MBreadthSnapshot
	for !month.After(last) {
		snaps, err := s.readFile(s.FileFor(month))
		if err != nil {
			return nil, helpers.NewDatabaseError("read workbook", err)
		}
		for _, snap := range snaps {
			if d := snap.Date(); d >= from && d <= to {
				out = append(out, snap)
			}
		}
		month = month.AddDate(0, 1, 0)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].CapturedAt.Before(out[j].CapturedAt) })
	return out, nil
}

// -----------------------------------------------------------------------------

// Latest returns the newest snapshot across all workbooks.
func (s *ExcelStore) Latest() (*models.MBreadthSnapshot, error) {
	files, err := s.ListDataFiles()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := len(files) - 1; i >= 0; i-- {
		snaps, err := s.readFile(filepath.Join(s.Dir, files[i]))
		if err != nil {
			return nil, helpers.NewDatabaseError("read workbook", err)
		}
		if len(snaps) == 0 {
			continue
		}
		latest := snaps[0]
		for _, snap := range snaps[1:] {
			if snap.CapturedAt.After(latest.CapturedAt) {
				latest = snap
			}
		}
		return &latest, nil
	}
	return nil, nil
}

// -----------------------------------------------------------------------------

// ListDataFiles returns workbook names sorted oldest month first.
func (s *ExcelStore) ListDataFiles() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(s.Dir, s.Prefix+"_*.xlsx"))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = filepath.Base(m)
	}
	sort.Strings(names)
	return names, nil
}

// -----------------------------------------------------------------------------

// CleanupOldData removes whole monthly workbooks that end before the
// retention cutoff; 0 keeps everything.
func (s *ExcelStore) CleanupOldData() error {
	days := s.Config.Storage.DataRetentionDays
	if days <= 0 {
		return nil
	}
	cutoff := s.FileFor(time.Now().AddDate(0, 0, -days))

	files, err := s.ListDataFiles()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range files {
		path := filepath.Join(s.Dir, name)
		if path >= cutoff {
			break
		}
		if err := os.Remove(path); err != nil {
			return helpers.NewDatabaseError("remove workbook", err)
		}
		s.Logger.Info("Cleanup: removed %s", name)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *ExcelStore) Close() error {
	return nil
}
