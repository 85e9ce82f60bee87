package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	MinutesPerHour = 60
	MinutesPerDay  = 24 * MinutesPerHour
)

// TimeOfDay: время суток с точностью до минуты, количество минут от полуночи.
// Допустимые значения: 0 <= t < 1440.
type TimeOfDay int

// ParseTime парсит строку формата HH:MM.
// Некорректная строка это ошибка вызывающей стороны, никакого "подрезания" значений.
func ParseTime(s string) (TimeOfDay, error) {
	return parseClock(s, 23)
}

// ParseEndTime парсит конец интервала, который может выходить за полночь (конец слота 24:35)
func ParseEndTime(s string) (TimeOfDay, error) {
	return parseClock(s, 99)
}

func parseClock(s string, maxHours int) (TimeOfDay, error) {
	hh, mm, found := strings.Cut(s, ":")
	if !found {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	hours, ok := twoDigits(hh)
	if !ok || hours > maxHours {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	minutes, ok := twoDigits(mm)
	if !ok || minutes > 59 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}

	return TimeOfDay(hours*MinutesPerHour + minutes), nil
}

// twoDigits принимает ровно две ASCII-цифры, без знаков и пробелов
func twoDigits(s string) (int, bool) {
	if len(s) != 2 {
		return 0, false
	}
	value := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		value = value*10 + int(c-'0')
	}
	return value, true
}

// MustParseTime используется для констант и тестов
func MustParseTime(s string) TimeOfDay {
	t, err := ParseTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

// FormatTime форматирует количество минут от полуночи в HH:MM
func FormatTime(minutes int) (string, error) {
	t := TimeOfDay(minutes)
	if !t.Valid() {
		return "", fmt.Errorf("%w: %d minutes", ErrMalformedTime, minutes)
	}
	return t.String(), nil
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < MinutesPerDay
}

func (t TimeOfDay) Minutes() int {
	return int(t)
}

func (t TimeOfDay) Add(minutes int) TimeOfDay {
	return t + TimeOfDay(minutes)
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/MinutesPerHour, int(t)%MinutesPerHour)
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedTime, string(data))
	}

	parsed, err := ParseTime(str)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// TimeBlock: интервал времени внутри дня, start < end
type TimeBlock struct {
	Start TimeOfDay `json:"start"`
	End   TimeOfDay `json:"end"`
}

func NewTimeBlock(start, end string) (TimeBlock, error) {
	s, err := ParseTime(start)
	if err != nil {
		return TimeBlock{}, err
	}
	e, err := ParseTime(end)
	if err != nil {
		return TimeBlock{}, err
	}

	block := TimeBlock{Start: s, End: e}
	if err := block.Validate(); err != nil {
		return TimeBlock{}, err
	}
	return block, nil
}

func MustTimeBlock(start, end string) TimeBlock {
	block, err := NewTimeBlock(start, end)
	if err != nil {
		panic(err)
	}
	return block
}

// Validate отклоняет блоки нулевой и отрицательной длины
func (b TimeBlock) Validate() error {
	if !b.Start.Valid() || !b.End.Valid() {
		return fmt.Errorf("%w: %s-%s out of day range", ErrInvalidBlock, b.Start, b.End)
	}
	if b.Start >= b.End {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidBlock, b.Start, b.End)
	}
	return nil
}

func (b TimeBlock) Minutes() int {
	return int(b.End - b.Start)
}

// Contains: принадлежность смене, закрытый интервал [start, end]
func (b TimeBlock) Contains(t TimeOfDay) bool {
	return t >= b.Start && t <= b.End
}

// ContainsHalfOpen: принадлежность перерыву, полуоткрытый интервал [start, end).
// Слот, начинающийся ровно в конце перерыва, допустим.
func (b TimeBlock) ContainsHalfOpen(t TimeOfDay) bool {
	return t >= b.Start && t < b.End
}

func (b TimeBlock) Overlaps(other TimeBlock) bool {
	return BlocksOverlap(b, other)
}

// OverlapMinutes возвращает длину пересечения двух блоков
func (b TimeBlock) OverlapMinutes(other TimeBlock) int {
	start := max(b.Start, other.Start)
	end := min(b.End, other.End)
	if end <= start {
		return 0
	}
	return int(end - start)
}

func (b TimeBlock) String() string {
	return b.Start.String() + "-" + b.End.String()
}

// InBlock: обертка для проверки принадлежности времени смене (закрытый интервал)
func InBlock(t TimeOfDay, block TimeBlock) bool {
	return block.Contains(t)
}

// InBreak: обертка для проверки принадлежности времени перерыву (полуоткрытый интервал)
func InBreak(t TimeOfDay, block TimeBlock) bool {
	return block.ContainsHalfOpen(t)
}

// BlocksOverlap: стандартная проверка пересечения полуоткрытых интервалов
func BlocksOverlap(a, b TimeBlock) bool {
	return a.Start < b.End && b.Start < a.End
}
