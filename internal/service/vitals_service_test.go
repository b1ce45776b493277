package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/queue"
	"github.com/dmehra2102/prod-golang-projects/opdflow/internal/domain/vitals"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type fakeVitalsRepo struct {
	mu      sync.Mutex
	records []*vitals.VitalsRecord
}

func (f *fakeVitalsRepo) Create(ctx context.Context, v *vitals.VitalsRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = uuid.New()
	cp := *v
	f.records = append(f.records, &cp)
	return nil
}

func (f *fakeVitalsRepo) ListByPatient(ctx context.Context, patientID uuid.UUID, limit int) ([]*vitals.VitalsRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*vitals.VitalsRecord
	for i := len(f.records) - 1; i >= 0 && len(out) < limit; i-- {
		if f.records[i].PatientID == patientID {
			cp := *f.records[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeVitalsRepo) GetLatestForEntry(ctx context.Context, entryID uuid.UUID) (*vitals.VitalsRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.records) - 1; i >= 0; i-- {
		if f.records[i].QueueEntryID != nil && *f.records[i].QueueEntryID == entryID {
			cp := *f.records[i]
			return &cp, nil
		}
	}
	return nil, vitals.ErrRecordNotFound
}

func newTestVitalsService(queueRepo queue.Repository) (*VitalsService, *fakeVitalsRepo) {
	repo := &fakeVitalsRepo{}
	return NewVitalsService(repo, queueRepo, newTestAuditService(), nil, zap.NewNop()), repo
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestRecordVitalsRejectsEmptyMeasurements(t *testing.T) {
	svc, _ := newTestVitalsService(newFakeQueueRepo())
	callerID, role, ip := caller()

	_, err := svc.Record(context.Background(), &vitals.RecordCommand{
		PatientID: uuid.New(),
	}, callerID, role, ip)
	if !errors.Is(err, vitals.ErrEmptyMeasurements) {
		t.Fatalf("error = %v, want ErrEmptyMeasurements", err)
	}
}

func TestRecordVitalsComputesBMI(t *testing.T) {
	svc, _ := newTestVitalsService(newFakeQueueRepo())
	callerID, role, ip := caller()

	v, err := svc.Record(context.Background(), &vitals.RecordCommand{
		PatientID: uuid.New(),
		Measurements: vitals.Measurements{
			WeightKg: floatPtr(70),
			HeightCm: floatPtr(175),
		},
	}, callerID, role, ip)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if v.BMI == nil {
		t.Fatal("BMI not computed")
	}
	if math.Abs(*v.BMI-22.857) > 0.01 {
		t.Errorf("BMI = %.3f, want ~22.857", *v.BMI)
	}
}

func TestRecordVitalsWithoutHeightSkipsBMI(t *testing.T) {
	svc, _ := newTestVitalsService(newFakeQueueRepo())
	callerID, role, ip := caller()

	v, err := svc.Record(context.Background(), &vitals.RecordCommand{
		PatientID:    uuid.New(),
		Measurements: vitals.Measurements{PulseBPM: intPtr(72), WeightKg: floatPtr(70)},
	}, callerID, role, ip)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if v.BMI != nil {
		t.Errorf("BMI = %v, want nil without height", *v.BMI)
	}
}

func TestRecordVitalsLinkedToQueueEntry(t *testing.T) {
	queueRepo := newFakeQueueRepo()
	svc, repo := newTestVitalsService(queueRepo)
	callerID, role, ip := caller()

	entry := &queue.QueueEntry{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		QueueDate: queue.Day(time.Now()),
		Status:    queue.StatusWaiting,
	}
	if err := queueRepo.Enqueue(context.Background(), entry); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	v, err := svc.Record(context.Background(), &vitals.RecordCommand{
		PatientID:    entry.PatientID,
		QueueEntryID: &entry.ID,
		Measurements: vitals.Measurements{BloodPressure: "120/80"},
	}, callerID, role, ip)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	// Recording vitals must not advance the queue entry; the transition is explicit.
	got, _ := queueRepo.GetByID(context.Background(), entry.ID)
	if got.Status != queue.StatusWaiting {
		t.Errorf("entry status = %s, want waiting (recording does not transition)", got.Status)
	}

	latest, err := repo.GetLatestForEntry(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("latest for entry: %v", err)
	}
	if latest.ID != v.ID {
		t.Errorf("latest record id = %s, want %s", latest.ID, v.ID)
	}
}

func TestRecordVitalsUnknownQueueEntry(t *testing.T) {
	svc, _ := newTestVitalsService(newFakeQueueRepo())
	callerID, role, ip := caller()
	unknown := uuid.New()

	_, err := svc.Record(context.Background(), &vitals.RecordCommand{
		PatientID:    uuid.New(),
		QueueEntryID: &unknown,
		Measurements: vitals.Measurements{BloodPressure: "120/80"},
	}, callerID, role, ip)
	if !errors.Is(err, queue.ErrEntryNotFound) {
		t.Fatalf("error = %v, want ErrEntryNotFound", err)
	}
}

func TestLatestForEntry(t *testing.T) {
	queueRepo := newFakeQueueRepo()
	svc, _ := newTestVitalsService(queueRepo)
	callerID, role, ip := caller()

	entry := &queue.QueueEntry{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		QueueDate: queue.Day(time.Now()),
		Status:    queue.StatusWaiting,
	}
	if err := queueRepo.Enqueue(context.Background(), entry); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if _, err := svc.Record(context.Background(), &vitals.RecordCommand{
		PatientID:    entry.PatientID,
		QueueEntryID: &entry.ID,
		Measurements: vitals.Measurements{PulseBPM: intPtr(68)},
	}, callerID, role, ip); err != nil {
		t.Fatalf("first record: %v", err)
	}
	second, err := svc.Record(context.Background(), &vitals.RecordCommand{
		PatientID:    entry.PatientID,
		QueueEntryID: &entry.ID,
		Measurements: vitals.Measurements{PulseBPM: intPtr(74)},
	}, callerID, role, ip)
	if err != nil {
		t.Fatalf("second record: %v", err)
	}

	latest, err := svc.LatestForEntry(context.Background(), entry.ID)
	if err != nil {
		t.Fatalf("latest for entry: %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("latest id = %s, want most recent record %s", latest.ID, second.ID)
	}

	if _, err := svc.LatestForEntry(context.Background(), uuid.New()); !errors.Is(err, vitals.ErrRecordNotFound) {
		t.Errorf("unknown entry error = %v, want ErrRecordNotFound", err)
	}

	var valErr *ValidationError
	if _, err := svc.LatestForEntry(context.Background(), uuid.Nil); !errors.As(err, &valErr) {
		t.Errorf("nil entry id error = %v, want ValidationError", err)
	}
}

func TestListForPatientClampsLimit(t *testing.T) {
	svc, _ := newTestVitalsService(newFakeQueueRepo())
	callerID, role, ip := caller()
	patientID := uuid.New()

	for i := 0; i < 30; i++ {
		if _, err := svc.Record(context.Background(), &vitals.RecordCommand{
			PatientID:    patientID,
			Measurements: vitals.Measurements{PulseBPM: intPtr(60 + i)},
		}, callerID, role, ip); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	records, err := svc.ListForPatient(context.Background(), patientID, -1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 20 {
		t.Errorf("len(records) = %d, want default limit 20", len(records))
	}

	records, err = svc.ListForPatient(context.Background(), patientID, 5)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(records) != 5 {
		t.Errorf("len(records) = %d, want 5", len(records))
	}
}
