package domain

import "strings"

// UserRecord - запись справочника пользователей
type UserRecord struct {
	Email  string `json:"email"`
	Number string `json:"number"`
}

// CanonicalNumber - приводит номер к виду из одних цифр ("12-34-56" -> "123456")
func CanonicalNumber(number string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(number))
}
