package domain

// SearchQuery - нормализованный фильтр поиска, пустая строка означает отсутствие фильтра
type SearchQuery struct {
	Email  string `json:"email,omitempty"`
	Number string `json:"number,omitempty"`
}

// NewSearchQuery - собирает запрос, приводя номер к каноническому виду.
// Email сравнивается как есть, без обрезки пробелов.
func NewSearchQuery(email, number string) SearchQuery {
	return SearchQuery{
		Email:  email,
		Number: CanonicalNumber(number),
	}
}

// Matches - проверяет, подходит ли запись под фильтр.
// Пустой запрос подходит под любую запись.
func (q SearchQuery) Matches(r UserRecord) bool {
	if q.Email != "" && q.Email != r.Email {
		return false
	}
	if q.Number != "" && CanonicalNumber(q.Number) != CanonicalNumber(r.Number) {
		return false
	}
	return true
}

// SearchRequest - тело запроса POST /search
type SearchRequest struct {
	Email  string `json:"email"`
	Number string `json:"number"`
}

// Query - преобразует тело запроса в SearchQuery
func (r SearchRequest) Query() SearchQuery {
	return NewSearchQuery(r.Email, r.Number)
}
