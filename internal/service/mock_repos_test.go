package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/Oskru/study-smart/internal/model"
	"github.com/Oskru/study-smart/internal/repository"
	"github.com/Oskru/study-smart/pkg/messaging"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User // key: user_id
	seq   int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.seq++
		user.UserID = fmt.Sprintf("user-%d", m.seq)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if role == "" || u.Role == role {
			all = append(all, *u)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].UserID < all[j].UserID })
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) ListByIDs(_ context.Context, ids []string) ([]model.User, error) {
	var result []model.User
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			result = append(result, *u)
		}
	}
	return result, nil
}

func (m *mockUserRepo) Delete(_ context.Context, id, _ string) error {
	delete(m.users, id)
	return nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses map[string]*model.Course
	users   *mockUserRepo
	seq     int
}

func newMockCourseRepo(users *mockUserRepo) *mockCourseRepo {
	return &mockCourseRepo{courses: make(map[string]*model.Course), users: users}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		m.seq++
		course.CourseID = fmt.Sprintf("course-%d", m.seq)
	}
	m.courses[course.CourseID] = course
	return nil
}

// GetByID 模拟 Preload("Lecturer")
func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	if cp.LecturerID != nil {
		cp.Lecturer = m.users.users[*cp.LecturerID]
	}
	return &cp, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	cp := *course
	cp.Lecturer = nil
	m.courses[course.CourseID] = &cp
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id, _ string) error {
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCourseRepo) ListByNamesOrIDs(_ context.Context, names, ids []string) ([]model.Course, error) {
	want := make(map[string]bool)
	for _, n := range names {
		want["name:"+n] = true
	}
	for _, id := range ids {
		want["id:"+id] = true
	}
	var result []model.Course
	for _, c := range m.courses {
		if want["name:"+c.Name] || want["id:"+c.CourseID] {
			result = append(result, *c)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockCourseRepo) ListByLecturer(_ context.Context, lecturerID string) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		if c.LecturerID != nil && *c.LecturerID == lecturerID {
			result = append(result, *c)
		}
	}
	return result, nil
}

// ── Mock GroupRepository ──

type mockGroupRepo struct {
	groups map[string]*model.Group
	seq    int
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{groups: make(map[string]*model.Group)}
}

func (m *mockGroupRepo) Create(_ context.Context, group *model.Group) error {
	if group.GroupID == "" {
		m.seq++
		group.GroupID = fmt.Sprintf("group-%d", m.seq)
	}
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) GetByID(_ context.Context, id string) (*model.Group, error) {
	if g, ok := m.groups[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) Update(_ context.Context, group *model.Group) error {
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) Delete(_ context.Context, id, _ string) error {
	delete(m.groups, id)
	return nil
}

func (m *mockGroupRepo) List(_ context.Context) ([]model.Group, error) {
	var result []model.Group
	for _, g := range m.groups {
		result = append(result, *g)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockGroupRepo) ListByStudent(_ context.Context, studentID string) ([]model.Group, error) {
	var result []model.Group
	for _, g := range m.groups {
		if g.StudentIDs.Contains(studentID) {
			result = append(result, *g)
		}
	}
	return result, nil
}

// ── Mock AvailabilityRepository ──

type mockAvailabilityRepo struct {
	items []model.Availability
	seq   int
}

func newMockAvailabilityRepo() *mockAvailabilityRepo {
	return &mockAvailabilityRepo{}
}

func (m *mockAvailabilityRepo) ListByLecturer(_ context.Context, lecturerID string) ([]model.Availability, error) {
	var result []model.Availability
	for _, a := range m.items {
		if a.LecturerID == lecturerID {
			result = append(result, a)
		}
	}
	return result, nil
}

func (m *mockAvailabilityRepo) BatchCreate(_ context.Context, items []model.Availability) error {
	for i := range items {
		m.seq++
		items[i].AvailabilityID = fmt.Sprintf("avail-%d", m.seq)
		m.items = append(m.items, items[i])
	}
	return nil
}

func (m *mockAvailabilityRepo) DeleteByIDs(_ context.Context, lecturerID string, ids []string) (int64, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	kept := m.items[:0]
	for _, a := range m.items {
		if want[a.AvailabilityID] && a.LecturerID == lecturerID {
			n++
			continue
		}
		kept = append(kept, a)
	}
	m.items = kept
	return n, nil
}

// ── Mock PreferenceRepository ──

type mockPreferenceRepo struct {
	items []model.Preference
	seq   int
}

func newMockPreferenceRepo() *mockPreferenceRepo {
	return &mockPreferenceRepo{}
}

func (m *mockPreferenceRepo) ListByStudent(_ context.Context, studentID, courseID string) ([]model.Preference, error) {
	var result []model.Preference
	for _, p := range m.items {
		if p.StudentID == studentID && (courseID == "" || p.CourseID == courseID) {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m *mockPreferenceRepo) ListByStudents(_ context.Context, studentIDs []string, courseID string) ([]model.Preference, error) {
	var want map[string]bool
	if studentIDs != nil {
		want = make(map[string]bool, len(studentIDs))
		for _, id := range studentIDs {
			want[id] = true
		}
	}
	var result []model.Preference
	for _, p := range m.items {
		if want != nil && !want[p.StudentID] {
			continue
		}
		if courseID != "" && p.CourseID != courseID {
			continue
		}
		result = append(result, p)
	}
	return result, nil
}

func (m *mockPreferenceRepo) BatchCreate(_ context.Context, items []model.Preference) error {
	for i := range items {
		m.seq++
		items[i].PreferenceID = fmt.Sprintf("pref-%d", m.seq)
		m.items = append(m.items, items[i])
	}
	return nil
}

func (m *mockPreferenceRepo) DeleteByIDs(_ context.Context, studentID string, ids []string) (int64, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	kept := m.items[:0]
	for _, p := range m.items {
		if want[p.PreferenceID] && p.StudentID == studentID {
			n++
			continue
		}
		kept = append(kept, p)
	}
	m.items = kept
	return n, nil
}

// ── Mock TokenStore / Publisher ──

type mockTokenStore struct {
	blacklisted map[string]time.Duration
}

func newMockTokenStore() *mockTokenStore {
	return &mockTokenStore{blacklisted: make(map[string]time.Duration)}
}

func (m *mockTokenStore) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	m.blacklisted[jti] = ttl
	return nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []messaging.Event
}

func (m *mockPublisher) Publish(_ context.Context, event messaging.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) types() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.events))
	for _, e := range m.events {
		out = append(out, e.Type)
	}
	return out
}

// ── 测试辅助 ──

// mockRepos 聚合所有 mock，便于测试直接造数据
type mockRepos struct {
	users          *mockUserRepo
	courses        *mockCourseRepo
	groups         *mockGroupRepo
	availabilities *mockAvailabilityRepo
	preferences    *mockPreferenceRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	users := newMockUserRepo()
	m := &mockRepos{
		users:          users,
		courses:        newMockCourseRepo(users),
		groups:         newMockGroupRepo(),
		availabilities: newMockAvailabilityRepo(),
		preferences:    newMockPreferenceRepo(),
	}
	repo := &repository.Repository{
		User:         m.users,
		Course:       m.courses,
		Group:        m.groups,
		Availability: m.availabilities,
		Preference:   m.preferences,
	}
	return repo, m
}

func (m *mockRepos) addUser(id, role string, confirmed bool) *model.User {
	u := &model.User{
		UserID:    id,
		Name:      "用户 " + id,
		Email:     id + "@uni.edu",
		Role:      role,
		Confirmed: confirmed,
	}
	m.users.users[id] = u
	return u
}

func (m *mockRepos) addCourse(id, name, lecturerID string, duration int) *model.Course {
	c := &model.Course{CourseID: id, Name: name, Duration: duration}
	if lecturerID != "" {
		c.LecturerID = &lecturerID
	}
	m.courses.courses[id] = c
	return c
}

func (m *mockRepos) addGroup(id, name string, students []string, courses []string) *model.Group {
	g := &model.Group{
		GroupID:    id,
		Name:       name,
		StudentIDs: model.StringArray(students),
		CourseIDs:  model.StringArray(courses),
	}
	m.groups.groups[id] = g
	return g
}

func (m *mockRepos) addAvailability(lecturerID, day string, times ...string) {
	m.availabilities.seq++
	m.availabilities.items = append(m.availabilities.items, model.Availability{
		AvailabilityID: fmt.Sprintf("avail-seed-%d", m.availabilities.seq),
		LecturerID:     lecturerID,
		DayName:        day,
		Times:          model.StringArray(times),
	})
}

func (m *mockRepos) addPreference(studentID, courseID, day string, times ...string) string {
	m.preferences.seq++
	id := fmt.Sprintf("pref-seed-%d", m.preferences.seq)
	m.preferences.items = append(m.preferences.items, model.Preference{
		PreferenceID: id,
		StudentID:    studentID,
		CourseID:     courseID,
		DayName:      day,
		Times:        model.StringArray(times),
	})
	return id
}
