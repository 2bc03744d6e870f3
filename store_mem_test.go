package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"lg/nutri-go-api/internal/nutrition"
)

// memStore is an in-memory Store for handler tests. failWith, when set, is
// returned by every method so storage failure paths can be exercised;
// secretErr fails only GetSecret.
type memStore struct {
	mu sync.Mutex

	users        []user
	profiles     map[int]nutrition.Profile
	assessments  map[int]nutrition.Assessment
	plans        map[int]nutrition.WeeklyPlan
	logs         map[int][]nutrition.MealLogEntry
	measurements map[int][]nutrition.WeightMeasurement
	secrets      map[string]string
	usage        map[string]int

	nextID    int
	failWith  error
	secretErr error
}

func newMemStore() *memStore {
	return &memStore{
		profiles:     map[int]nutrition.Profile{},
		assessments:  map[int]nutrition.Assessment{},
		plans:        map[int]nutrition.WeeklyPlan{},
		logs:         map[int][]nutrition.MealLogEntry{},
		measurements: map[int][]nutrition.WeightMeasurement{},
		secrets:      map[string]string{},
		usage:        map[string]int{},
	}
}

func (m *memStore) newID() string {
	m.nextID++
	return fmt.Sprintf("00000000-0000-0000-0000-%012d", m.nextID)
}

func (m *memStore) UserByUsername(_ context.Context, username string) (user, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return user{}, m.failWith
	}
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return user{}, errNotFound
}

func (m *memStore) UserIDByToken(_ context.Context, token string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	for _, u := range m.users {
		if u.AuthToken == token {
			return u.ID, nil
		}
	}
	return 0, errNotFound
}

// GetProfile honors ctx cancellation like a pgx query would.
func (m *memStore) GetProfile(ctx context.Context, userID int) (nutrition.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nutrition.Profile{}, m.failWith
	}
	if err := ctx.Err(); err != nil {
		return nutrition.Profile{}, err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nutrition.Profile{}, errNotFound
	}
	return p, nil
}

func (m *memStore) SaveProfile(_ context.Context, userID int, p nutrition.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.profiles[userID] = p
	return nil
}

func (m *memStore) GetAssessment(_ context.Context, userID int) (nutrition.Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nutrition.Assessment{}, m.failWith
	}
	a, ok := m.assessments[userID]
	if !ok {
		return nutrition.Assessment{}, errNotFound
	}
	return a, nil
}

func (m *memStore) SaveAssessment(_ context.Context, userID int, a nutrition.Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.assessments[userID] = a
	return nil
}

func (m *memStore) GetWeeklyPlan(_ context.Context, userID int) (nutrition.WeeklyPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nutrition.WeeklyPlan{}, m.failWith
	}
	p, ok := m.plans[userID]
	if !ok {
		return nutrition.WeeklyPlan{}, errNotFound
	}
	return p, nil
}

func (m *memStore) SaveWeeklyPlan(_ context.Context, userID int, plan nutrition.WeeklyPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.plans[userID] = plan
	return nil
}

func (m *memStore) ListMealLogs(_ context.Context, userID int, q logQuery) ([]nutrition.MealLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	var out []nutrition.MealLogEntry
	for _, e := range m.logs[userID] {
		switch {
		case q.Date != "" && e.Date != q.Date:
			continue
		case q.Date == "" && q.Since != "" && e.Date < q.Since:
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (m *memStore) CreateMealLog(_ context.Context, userID int, e nutrition.MealLogEntry) (nutrition.MealLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nutrition.MealLogEntry{}, m.failWith
	}
	e.ID = m.newID()
	e.CreatedAt = time.Date(2026, 1, 1, 0, 0, m.nextID, 0, time.UTC)
	m.logs[userID] = append(m.logs[userID], e)
	return e, nil
}

func (m *memStore) DeleteMealLog(_ context.Context, userID int, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for i, e := range m.logs[userID] {
		if e.ID == id {
			m.logs[userID] = append(m.logs[userID][:i], m.logs[userID][i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (m *memStore) ListMeasurements(_ context.Context, userID int) ([]nutrition.WeightMeasurement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	return append([]nutrition.WeightMeasurement(nil), m.measurements[userID]...), nil
}

func (m *memStore) CreateMeasurement(_ context.Context, userID int, w nutrition.WeightMeasurement) (nutrition.WeightMeasurement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nutrition.WeightMeasurement{}, m.failWith
	}
	w.ID = m.newID()
	m.measurements[userID] = append(m.measurements[userID], w)
	return w, nil
}

func (m *memStore) DeleteMeasurement(_ context.Context, userID int, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	for i, w := range m.measurements[userID] {
		if w.ID == id {
			m.measurements[userID] = append(m.measurements[userID][:i], m.measurements[userID][i+1:]...)
			return nil
		}
	}
	return errNotFound
}

func (m *memStore) GetSecret(_ context.Context, name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return "", m.failWith
	}
	if m.secretErr != nil {
		return "", m.secretErr
	}
	v, ok := m.secrets[name]
	if !ok {
		return "", errNotFound
	}
	return v, nil
}

func (m *memStore) IncrementAIUsage(_ context.Context, userID int, day string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	key := fmt.Sprintf("%d/%s", userID, day)
	m.usage[key]++
	return m.usage[key], nil
}
