package selection

import "sort"

// Set хранит выбранные категории. Любое изменение набора сообщается через onChange,
// чтобы владелец сбросил ответ, полученный для прежних ограничений.
type Set struct {
	ids      map[string]struct{}
	disabled bool
	onChange func()
}

// New создает пустой набор категорий.
func New(onChange func()) *Set {
	return &Set{
		ids:      make(map[string]struct{}),
		onChange: onChange,
	}
}

// SetDisabled блокирует изменения, пока справочные данные загружаются.
func (s *Set) SetDisabled(disabled bool) {
	s.disabled = disabled
}

func (s *Set) Disabled() bool {
	return s.disabled
}

// Toggle добавляет отсутствующий идентификатор или удаляет присутствующий.
// Возвращает false, если набор заблокирован или id пустой.
func (s *Set) Toggle(categoryID string) bool {
	if s.disabled || categoryID == "" {
		return false
	}

	if _, ok := s.ids[categoryID]; ok {
		delete(s.ids, categoryID)
	} else {
		s.ids[categoryID] = struct{}{}
	}

	s.changed()
	return true
}

// Clear очищает набор. Пустой набор не считается изменением.
func (s *Set) Clear() bool {
	if s.disabled || len(s.ids) == 0 {
		return false
	}

	s.ids = make(map[string]struct{})
	s.changed()
	return true
}

// Retain удаляет идентификаторы, которых нет в known.
func (s *Set) Retain(known map[string]struct{}) bool {
	removed := false
	for id := range s.ids {
		if _, ok := known[id]; !ok {
			delete(s.ids, id)
			removed = true
		}
	}

	if removed {
		s.changed()
	}
	return removed
}

func (s *Set) IsSelected(categoryID string) bool {
	_, ok := s.ids[categoryID]
	return ok
}

func (s *Set) Len() int {
	return len(s.ids)
}

// IDs возвращает выбранные идентификаторы в отсортированном виде.
func (s *Set) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Set) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
