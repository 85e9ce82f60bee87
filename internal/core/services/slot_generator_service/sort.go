package slot_generator_service

import "github.com/suchimauz/clinic-availability-engine/internal/core/domain"

type SlotSlice []domain.Slot

// quickSort — функция для сортировки SlotSlice по времени начала.
// Порядок равных элементов сохраняется.
func (s SlotSlice) quickSort() SlotSlice {
	if len(s) < 2 {
		return s
	}

	// Выбираем опорный элемент
	pivot := s[len(s)/2]

	// Разделяем слайс на три части
	less := SlotSlice{}
	equal := SlotSlice{}
	greater := SlotSlice{}

	for _, slot := range s {
		if slot.Time < pivot.Time {
			less = append(less, slot)
		} else if slot.Time == pivot.Time {
			equal = append(equal, slot)
		} else {
			greater = append(greater, slot)
		}
	}

	// Рекурсивно сортируем подмассивы и объединяем их
	return append(append(less.quickSort(), equal...), greater.quickSort()...)
}

// unique убирает дубли по времени в отсортированном слайсе (пересекающиеся смены).
// Из дублей оставляем доступный, если такой есть.
func (s SlotSlice) unique() []domain.Slot {
	result := make([]domain.Slot, 0, len(s))
	for _, slot := range s {
		last := len(result) - 1
		if last >= 0 && result[last].Time == slot.Time {
			if !result[last].Available && slot.Available {
				result[last] = slot
			}
			continue
		}
		result = append(result, slot)
	}
	return result
}
