package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/rgillard/planlog/internal/domain"

	"github.com/google/uuid"
)

type stubCreator struct {
	created []domain.CreateEventInput
}

func (s *stubCreator) CreateEvent(ctx context.Context, input domain.CreateEventInput) (domain.Event, error) {
	if _, _, err := input.Validate(); err != nil {
		return domain.Event{}, err
	}
	s.created = append(s.created, input)
	return domain.Event{ID: uuid.New()}, nil
}

type stubImportLogRepo struct {
	recorded []domain.ImportLogEntry
}

func (s *stubImportLogRepo) Record(ctx context.Context, entry domain.ImportLogEntry) error {
	s.recorded = append(s.recorded, entry)
	return nil
}

func (s *stubImportLogRepo) List(ctx context.Context, fileName string, limit int, offset int) ([]domain.ImportLogEntry, error) {
	return s.recorded, nil
}

func TestImportCreatesEvents(t *testing.T) {
	creator := &stubCreator{}
	logRepo := &stubImportLogRepo{}
	service := NewService(creator, logRepo)

	data := `profiles,timezone,start,end
Alice;Bob,UTC,2024-01-10T09:00:00Z,2024-01-10T10:00:00Z
Carol,Asia/Tokyo,2024-01-11T09:00:00Z,2024-01-11T10:00:00Z
`
	summary, err := service.Import(context.Background(), Request{
		FileName: "events.csv",
		Data:     strings.NewReader(data),
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}

	if summary.TotalRows != 2 || summary.Imported != 2 || summary.Failed != 0 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(creator.created) != 2 {
		t.Fatalf("expected 2 events created, got %d", len(creator.created))
	}
	if len(creator.created[0].Profiles) != 2 || creator.created[0].Profiles[0] != "Alice" {
		t.Fatalf("expected split profile names, got %v", creator.created[0].Profiles)
	}
}

func TestImportRecordsRowFailures(t *testing.T) {
	creator := &stubCreator{}
	logRepo := &stubImportLogRepo{}
	service := NewService(creator, logRepo)

	// Second row has end before start and must be skipped, not abort the batch.
	data := `profiles,timezone,start,end
Alice,UTC,2024-01-10T09:00:00Z,2024-01-10T10:00:00Z
Bob,UTC,2024-01-10T10:00:00Z,2024-01-10T09:00:00Z
`
	summary, err := service.Import(context.Background(), Request{
		FileName: "events.csv",
		Data:     strings.NewReader(data),
	})
	if err != nil {
		t.Fatalf("import returned error: %v", err)
	}

	if summary.Imported != 1 || summary.Failed != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Errors) != 1 || summary.Errors[0].Row != 3 {
		t.Fatalf("expected row 3 to fail, got %+v", summary.Errors)
	}
	if len(logRepo.recorded) != 1 {
		t.Fatalf("expected one import log entry, got %d", len(logRepo.recorded))
	}
	if logRepo.recorded[0].RowNumber == nil || *logRepo.recorded[0].RowNumber != 3 {
		t.Fatalf("expected recorded row number 3, got %+v", logRepo.recorded[0])
	}
}

func TestImportRejectsUnknownFormat(t *testing.T) {
	service := NewService(&stubCreator{}, &stubImportLogRepo{})

	_, err := service.Import(context.Background(), Request{
		FileName: "events.pdf",
		Data:     strings.NewReader("whatever"),
	})
	if err != ErrUnsupportedFormat {
		t.Fatalf("expected unsupported format error, got %v", err)
	}
}

func TestImportRejectsMissingColumns(t *testing.T) {
	service := NewService(&stubCreator{}, &stubImportLogRepo{})

	data := `profiles,start,end
Alice,2024-01-10T09:00:00Z,2024-01-10T10:00:00Z
`
	_, err := service.Import(context.Background(), Request{
		FileName: "events.csv",
		Data:     strings.NewReader(data),
	})
	if err == nil || !strings.Contains(err.Error(), "timezone") {
		t.Fatalf("expected missing column error, got %v", err)
	}
}
