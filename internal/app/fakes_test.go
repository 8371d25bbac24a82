package app

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"time"

	"sowing_calendar_bot/internal/domain/farmer"
	"sowing_calendar_bot/internal/domain/sowing"
	idb "sowing_calendar_bot/internal/infra/database"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// ============================================================================
// Test Doubles (Fakes)
// ============================================================================

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type fakeWindowRepo struct {
	windows map[int64]*sowing.Window
	nextID  int64
	err     error
}

func newFakeWindowRepo(ws ...*sowing.Window) *fakeWindowRepo {
	r := &fakeWindowRepo{windows: make(map[int64]*sowing.Window)}
	for _, w := range ws {
		_ = r.Create(context.Background(), w)
	}
	return r
}

func (r *fakeWindowRepo) Create(_ context.Context, w *sowing.Window) error {
	if r.err != nil {
		return r.err
	}
	for _, existing := range r.windows {
		if strings.EqualFold(existing.CropName, w.CropName) &&
			strings.EqualFold(existing.Season.String, w.Season.String) &&
			strings.EqualFold(existing.Region.String, w.Region.String) {
			return idb.ErrDuplicateWindow
		}
	}
	r.nextID++
	w.ID = r.nextID
	r.windows[w.ID] = w
	return nil
}

func (r *fakeWindowRepo) Update(_ context.Context, w *sowing.Window) error {
	if _, ok := r.windows[w.ID]; !ok {
		return idb.ErrWindowNotFound
	}
	r.windows[w.ID] = w
	return nil
}

func (r *fakeWindowRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.windows[id]; !ok {
		return idb.ErrWindowNotFound
	}
	delete(r.windows, id)
	return nil
}

func (r *fakeWindowRepo) GetByID(_ context.Context, id int64) (*sowing.Window, error) {
	w, ok := r.windows[id]
	if !ok {
		return nil, idb.ErrWindowNotFound
	}
	return w, nil
}

func (r *fakeWindowRepo) sorted() []*sowing.Window {
	out := make([]*sowing.Window, 0, len(r.windows))
	for _, w := range r.windows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeWindowRepo) Search(_ context.Context, q sowing.Query) ([]*sowing.Window, error) {
	if r.err != nil {
		return nil, r.err
	}
	var out []*sowing.Window
	for _, w := range r.sorted() {
		if q.Crop != "" && !strings.Contains(strings.ToLower(w.CropName), strings.ToLower(q.Crop)) {
			continue
		}
		if q.Region != "" && !strings.EqualFold(w.Region.String, q.Region) {
			continue
		}
		if q.Season != "" && !strings.EqualFold(w.Season.String, q.Season) {
			continue
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *fakeWindowRepo) ListAll(_ context.Context) ([]*sowing.Window, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.sorted(), nil
}

func (r *fakeWindowRepo) ListByIDs(_ context.Context, ids []int64) ([]*sowing.Window, error) {
	var out []*sowing.Window
	for _, id := range ids {
		if w, ok := r.windows[id]; ok {
			out = append(out, w)
		}
	}
	return out, nil
}

type fakeFarmerRepo struct {
	farmers map[int64]*farmer.Farmer // by Telegram ID
	subs    map[int64]map[int64]bool // farmer ID -> window IDs
	nextID  int64
	listErr error
	getErr  error
}

func newFakeFarmerRepo(fs ...*farmer.Farmer) *fakeFarmerRepo {
	r := &fakeFarmerRepo{farmers: make(map[int64]*farmer.Farmer), subs: make(map[int64]map[int64]bool)}
	for _, f := range fs {
		_ = r.Create(context.Background(), f)
	}
	return r
}

func (r *fakeFarmerRepo) Create(_ context.Context, f *farmer.Farmer) error {
	if _, ok := r.farmers[f.TelegramID]; ok {
		return idb.ErrDuplicateTelegramID
	}
	r.nextID++
	f.ID = r.nextID
	r.farmers[f.TelegramID] = f
	return nil
}

func (r *fakeFarmerRepo) GetByID(_ context.Context, id int64) (*farmer.Farmer, error) {
	for _, f := range r.farmers {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, idb.ErrFarmerNotFound
}

func (r *fakeFarmerRepo) GetByTelegramID(_ context.Context, telegramID int64) (*farmer.Farmer, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	f, ok := r.farmers[telegramID]
	if !ok {
		return nil, idb.ErrFarmerNotFound
	}
	return f, nil
}

func (r *fakeFarmerRepo) Update(_ context.Context, f *farmer.Farmer) error {
	if _, ok := r.farmers[f.TelegramID]; !ok {
		return idb.ErrFarmerNotFound
	}
	r.farmers[f.TelegramID] = f
	return nil
}

func (r *fakeFarmerRepo) list(activeOnly bool) []*farmer.Farmer {
	var out []*farmer.Farmer
	for _, f := range r.farmers {
		if activeOnly && !f.IsActive {
			continue
		}
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *fakeFarmerRepo) ListActive(_ context.Context) ([]*farmer.Farmer, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.list(true), nil
}

func (r *fakeFarmerRepo) ListAll(_ context.Context) ([]*farmer.Farmer, error) {
	return r.list(false), nil
}

func (r *fakeFarmerRepo) Subscribe(_ context.Context, farmerID, windowID int64) error {
	if r.subs[farmerID] == nil {
		r.subs[farmerID] = make(map[int64]bool)
	}
	r.subs[farmerID][windowID] = true
	return nil
}

func (r *fakeFarmerRepo) Unsubscribe(_ context.Context, farmerID, windowID int64) error {
	delete(r.subs[farmerID], windowID)
	return nil
}

func (r *fakeFarmerRepo) ListSubscriptions(_ context.Context, farmerID int64) ([]*farmer.Subscription, error) {
	var out []*farmer.Subscription
	for windowID := range r.subs[farmerID] {
		out = append(out, &farmer.Subscription{FarmerID: farmerID, WindowID: windowID})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WindowID < out[j].WindowID })
	return out, nil
}

type fakeRecordRepo struct {
	records []*sowing.Record
	err     error
}

func (r *fakeRecordRepo) Create(_ context.Context, rec *sowing.Record) error {
	if r.err != nil {
		return r.err
	}
	rec.ID = int64(len(r.records) + 1)
	r.records = append(r.records, rec)
	return nil
}

func (r *fakeRecordRepo) ListByFarmer(_ context.Context, farmerID int64, limit int) ([]*sowing.Record, error) {
	var out []*sowing.Record
	for i := len(r.records) - 1; i >= 0 && len(out) < limit; i-- {
		if r.records[i].FarmerID == farmerID {
			out = append(out, r.records[i])
		}
	}
	return out, nil
}

func (r *fakeRecordRepo) HasRecordSince(_ context.Context, farmerID, windowID int64, since time.Time) (bool, error) {
	for _, rec := range r.records {
		if rec.FarmerID == farmerID && rec.WindowID == windowID && !rec.SowedOn.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	sent   []sentMessage
	failTo map[int64]bool
}

func (n *fakeNotifier) SendMessage(chatID int64, text string, _ *telebot.SendOptions) error {
	if n.failTo[chatID] {
		return errors.New("telegram: bot was blocked by the user")
	}
	n.sent = append(n.sent, sentMessage{chatID: chatID, text: text})
	return nil
}
