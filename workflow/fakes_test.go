package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/amberworks/bestflow_backend/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// In-memory Stores + UnitOfWork for engine tests. InTransaction runs the
// function against a deep copy of the state and swaps it in only on success,
// so rollback behavior is observable without a database.

type fakeState struct {
	practices     map[string]models.BestPractice
	benchmarks    map[string]models.BenchmarkedPractice // keyed by practice id
	copies        []models.CopiedPractice
	summaries     map[string]models.MonthlySavings // keyed by plant|year|month
	leaderboard   map[string]models.LeaderboardEntry // keyed by plant|year
	plants        []models.Plant
	notifications []models.Notification
	events        []models.PortalEventRecord

	// failOn, when non-empty, makes the named store call return an error.
	failOn map[string]error

	lockedPractices []string
}

func newFakeState() *fakeState {
	return &fakeState{
		practices:   map[string]models.BestPractice{},
		benchmarks:  map[string]models.BenchmarkedPractice{},
		summaries:   map[string]models.MonthlySavings{},
		leaderboard: map[string]models.LeaderboardEntry{},
		failOn:      map[string]error{},
	}
}

func (st *fakeState) clone() *fakeState {
	out := newFakeState()
	for k, v := range st.practices {
		out.practices[k] = v
	}
	for k, v := range st.benchmarks {
		out.benchmarks[k] = v
	}
	for k, v := range st.summaries {
		out.summaries[k] = v
	}
	for k, v := range st.leaderboard {
		out.leaderboard[k] = v
	}
	out.copies = append(out.copies, st.copies...)
	out.plants = append(out.plants, st.plants...)
	out.notifications = append(out.notifications, st.notifications...)
	out.events = append(out.events, st.events...)
	out.failOn = st.failOn
	out.lockedPractices = append(out.lockedPractices, st.lockedPractices...)
	return out
}

func (st *fakeState) fail(op string) error {
	if err, ok := st.failOn[op]; ok {
		return err
	}
	return nil
}

func summaryKey(plantId string, year, month int) string {
	return fmt.Sprintf("%s|%d|%d", plantId, year, month)
}

func entryKey(plantId string, year int) string {
	return fmt.Sprintf("%s|%d", plantId, year)
}

type fakeStores struct {
	st *fakeState
}

func (f *fakeStores) Practices() PracticeStore         { return (*fakePracticeStore)(f) }
func (f *fakeStores) Benchmarks() BenchmarkStore       { return (*fakeBenchmarkStore)(f) }
func (f *fakeStores) Copies() CopyStore                { return (*fakeCopyStore)(f) }
func (f *fakeStores) Summaries() SummaryStore          { return (*fakeSummaryStore)(f) }
func (f *fakeStores) Leaderboard() LeaderboardStore    { return (*fakeLeaderboardStore)(f) }
func (f *fakeStores) Plants() PlantStore               { return (*fakePlantStore)(f) }
func (f *fakeStores) Notifications() NotificationStore { return (*fakeNotificationStore)(f) }
func (f *fakeStores) Events() EventStore               { return (*fakeEventStore)(f) }

func (f *fakeStores) LockPractice(ctx context.Context, practiceId string) error {
	f.st.lockedPractices = append(f.st.lockedPractices, practiceId)
	return nil
}

type fakeUnitOfWork struct {
	st *fakeState
}

func (u *fakeUnitOfWork) InTransaction(ctx context.Context, fn func(s Stores) error) error {
	working := u.st.clone()
	if err := fn(&fakeStores{st: working}); err != nil {
		return err
	}
	*u.st = *working
	return nil
}

type fakePracticeStore fakeStores

func (f *fakePracticeStore) GetActive(ctx context.Context, id string) (*models.BestPractice, error) {
	if err := f.st.fail("practices.GetActive"); err != nil {
		return nil, err
	}
	p, ok := f.st.practices[id]
	if !ok || p.IsDeleted {
		return nil, nil
	}
	return &p, nil
}

func (f *fakePracticeStore) Create(ctx context.Context, practice *models.BestPractice) error {
	if err := f.st.fail("practices.Create"); err != nil {
		return err
	}
	if practice.Id == "" {
		practice.Id = uuid.NewString()
	}
	f.st.practices[practice.Id] = *practice
	return nil
}

func (f *fakePracticeStore) SumApprovedSavings(ctx context.Context, plantId string, from, to time.Time, includeCrores bool) (decimal.Decimal, int, error) {
	if err := f.st.fail("practices.SumApprovedSavings"); err != nil {
		return decimal.Zero, 0, err
	}
	total := decimal.Zero
	count := 0
	for _, p := range f.st.practices {
		if p.PlantId != plantId || p.IsDeleted || p.Status != models.PracticeStatusApproved {
			continue
		}
		if p.SubmittedDate == nil || p.SubmittedDate.Before(from) || p.SubmittedDate.After(to) {
			continue
		}
		amount := decimal.Zero
		if p.SavingsAmount != nil {
			amount = *p.SavingsAmount
		}
		switch p.SavingsCurrency {
		case models.SavingsCurrencyLakhs:
			total = total.Add(amount)
		case models.SavingsCurrencyCrores:
			if !includeCrores {
				continue
			}
			total = total.Add(amount.Mul(decimal.NewFromInt(100)))
		default:
			continue
		}
		count++
	}
	return total, count, nil
}

type fakeBenchmarkStore fakeStores

func (f *fakeBenchmarkStore) ForPractice(ctx context.Context, practiceId string) (*models.BenchmarkedPractice, error) {
	if err := f.st.fail("benchmarks.ForPractice"); err != nil {
		return nil, err
	}
	b, ok := f.st.benchmarks[practiceId]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (f *fakeBenchmarkStore) Create(ctx context.Context, benchmark *models.BenchmarkedPractice) error {
	if err := f.st.fail("benchmarks.Create"); err != nil {
		return err
	}
	if benchmark.Id == "" {
		benchmark.Id = uuid.NewString()
	}
	f.st.benchmarks[benchmark.PracticeId] = *benchmark
	return nil
}

func (f *fakeBenchmarkStore) Delete(ctx context.Context, practiceId string) error {
	if err := f.st.fail("benchmarks.Delete"); err != nil {
		return err
	}
	delete(f.st.benchmarks, practiceId)
	return nil
}

func (f *fakeBenchmarkStore) All(ctx context.Context) ([]models.BenchmarkedPractice, error) {
	if err := f.st.fail("benchmarks.All"); err != nil {
		return nil, err
	}
	var out []models.BenchmarkedPractice
	for _, b := range f.st.benchmarks {
		b := b
		if p, ok := f.st.practices[b.PracticeId]; ok {
			practice := p
			b.Practice = &practice
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PracticeId < out[j].PracticeId })
	return out, nil
}

type fakeCopyStore fakeStores

func (f *fakeCopyStore) Exists(ctx context.Context, originalPracticeId, copyingPlantId string) (bool, error) {
	if err := f.st.fail("copies.Exists"); err != nil {
		return false, err
	}
	for _, c := range f.st.copies {
		if c.OriginalPracticeId == originalPracticeId && c.CopyingPlantId == copyingPlantId {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeCopyStore) Count(ctx context.Context, originalPracticeId string) (int64, error) {
	if err := f.st.fail("copies.Count"); err != nil {
		return 0, err
	}
	var n int64
	for _, c := range f.st.copies {
		if c.OriginalPracticeId == originalPracticeId {
			n++
		}
	}
	return n, nil
}

func (f *fakeCopyStore) Create(ctx context.Context, copy *models.CopiedPractice) error {
	if err := f.st.fail("copies.Create"); err != nil {
		return err
	}
	if copy.Id == "" {
		copy.Id = uuid.NewString()
	}
	f.st.copies = append(f.st.copies, *copy)
	return nil
}

func (f *fakeCopyStore) ForOriginal(ctx context.Context, originalPracticeId string) ([]models.CopiedPractice, error) {
	if err := f.st.fail("copies.ForOriginal"); err != nil {
		return nil, err
	}
	var out []models.CopiedPractice
	for _, c := range f.st.copies {
		if c.OriginalPracticeId == originalPracticeId {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeCopyStore) UpdateImplementationStatus(ctx context.Context, copyId string, status models.ImplementationStatus) error {
	if err := f.st.fail("copies.UpdateImplementationStatus"); err != nil {
		return err
	}
	for i := range f.st.copies {
		if f.st.copies[i].Id == copyId {
			f.st.copies[i].ImplementationStatus = status
			return nil
		}
	}
	return nil
}

type fakeSummaryStore fakeStores

func (f *fakeSummaryStore) Upsert(ctx context.Context, summary *models.MonthlySavings) error {
	if err := f.st.fail("summaries.Upsert"); err != nil {
		return err
	}
	if summary.Id == "" {
		summary.Id = uuid.NewString()
	}
	f.st.summaries[summaryKey(summary.PlantId, summary.Year, summary.Month)] = *summary
	return nil
}

func (f *fakeSummaryStore) ForPlantYear(ctx context.Context, plantId string, year int) ([]models.MonthlySavings, error) {
	if err := f.st.fail("summaries.ForPlantYear"); err != nil {
		return nil, err
	}
	var out []models.MonthlySavings
	for _, s := range f.st.summaries {
		if s.PlantId == plantId && s.Year == year {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out, nil
}

type fakeLeaderboardStore fakeStores

func (f *fakeLeaderboardStore) AddPoints(ctx context.Context, plantId string, year, originDelta, copierDelta int) error {
	if err := f.st.fail("leaderboard.AddPoints"); err != nil {
		return err
	}
	key := entryKey(plantId, year)
	entry, ok := f.st.leaderboard[key]
	if !ok {
		entry = models.LeaderboardEntry{Id: uuid.NewString(), PlantId: plantId, Year: year}
	}
	entry.OriginPoints += originDelta
	entry.CopierPoints += copierDelta
	entry.TotalPoints += originDelta + copierDelta
	f.st.leaderboard[key] = entry
	return nil
}

func (f *fakeLeaderboardStore) DeleteYear(ctx context.Context, year int) error {
	if err := f.st.fail("leaderboard.DeleteYear"); err != nil {
		return err
	}
	for key, entry := range f.st.leaderboard {
		if entry.Year == year {
			delete(f.st.leaderboard, key)
		}
	}
	return nil
}

func (f *fakeLeaderboardStore) EntriesForYear(ctx context.Context, year int) ([]models.LeaderboardEntry, error) {
	if err := f.st.fail("leaderboard.EntriesForYear"); err != nil {
		return nil, err
	}
	var out []models.LeaderboardEntry
	for _, entry := range f.st.leaderboard {
		if entry.Year == year {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].PlantId < out[j].PlantId
	})
	return out, nil
}

func (f *fakeLeaderboardStore) Entry(ctx context.Context, plantId string, year int) (*models.LeaderboardEntry, error) {
	if err := f.st.fail("leaderboard.Entry"); err != nil {
		return nil, err
	}
	entry, ok := f.st.leaderboard[entryKey(plantId, year)]
	if !ok {
		return nil, nil
	}
	return &entry, nil
}

type fakePlantStore fakeStores

func (f *fakePlantStore) Active(ctx context.Context) ([]models.Plant, error) {
	if err := f.st.fail("plants.Active"); err != nil {
		return nil, err
	}
	var out []models.Plant
	for _, p := range f.st.plants {
		if p.IsActive == nil || *p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePlantStore) Get(ctx context.Context, id string) (*models.Plant, error) {
	if err := f.st.fail("plants.Get"); err != nil {
		return nil, err
	}
	for _, p := range f.st.plants {
		if p.Id == id {
			p := p
			return &p, nil
		}
	}
	return nil, nil
}

type fakeNotificationStore fakeStores

func (f *fakeNotificationStore) Create(ctx context.Context, notification *models.Notification) error {
	if err := f.st.fail("notifications.Create"); err != nil {
		return err
	}
	if notification.Id == "" {
		notification.Id = uuid.NewString()
	}
	f.st.notifications = append(f.st.notifications, *notification)
	return nil
}

type fakeEventStore fakeStores

func (f *fakeEventStore) Emit(ctx context.Context, eventType models.PortalEventType, practiceId, plantId string, payload any) error {
	if err := f.st.fail("events.Emit"); err != nil {
		return err
	}
	record := models.PortalEventRecord{
		Id:            uuid.NewString(),
		EventType:     eventType,
		OccurredAt:    time.Now().UTC(),
		PublishStatus: models.OutboxPublishStatusPending,
	}
	if practiceId != "" {
		record.PracticeId = &practiceId
	}
	if plantId != "" {
		record.PlantId = &plantId
	}
	f.st.events = append(f.st.events, record)
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// Seed helpers shared by the workflow tests.

func seedPlant(st *fakeState, id, name string) {
	active := true
	st.plants = append(st.plants, models.Plant{Id: id, Name: name, ShortName: name, Division: "div", IsActive: &active})
}

func seedApprovedPractice(st *fakeState, id, plantId string, amount string, currency models.SavingsCurrency, submitted time.Time) {
	amt := decimal.RequireFromString(amount)
	st.practices[id] = models.BestPractice{
		Id:                id,
		Title:             "practice " + id,
		Description:       "desc",
		CategoryId:        "cat-1",
		SubmittedByUserId: "user-" + id,
		PlantId:           plantId,
		ProblemStatement:  "problem",
		Solution:          "solution",
		SavingsAmount:     &amt,
		SavingsCurrency:   currency,
		Status:            models.PracticeStatusApproved,
		SubmittedDate:     &submitted,
	}
}

func seedBenchmark(st *fakeState, practiceId string) {
	st.benchmarks[practiceId] = models.BenchmarkedPractice{
		Id:                  uuid.NewString(),
		PracticeId:          practiceId,
		BenchmarkedByUserId: "hq-admin",
		BenchmarkedDate:     time.Now().UTC(),
	}
}
