package client

import (
	"fmt"
	"io"
	"sync"

	"user-search/internal/domain"
	"user-search/internal/form"
)

// ConsoleView - View для терминала
type ConsoleView struct {
	mu      sync.Mutex
	out     io.Writer
	loading bool
	shown   bool // на экране результат прошлого поиска
}

// NewConsoleView создает View, пишущий в out
func NewConsoleView(out io.Writer) *ConsoleView {
	return &ConsoleView{out: out}
}

// Separator отделяет результат прошлого поиска от нового
const Separator = "----"

// Reset - в терминале нельзя стереть вывод, поэтому прошлый результат отчеркивается
func (v *ConsoleView) Reset() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.shown {
		fmt.Fprintln(v.out, Separator)
		v.shown = false
	}
}

func (v *ConsoleView) SetLoading(loading bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if loading && !v.loading {
		fmt.Fprintln(v.out, "Searching...")
	}
	v.loading = loading
}

// ShowResults - номера показываются с маской 12-34-56
func (v *ConsoleView) ShowResults(users []domain.UserRecord) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.shown = true
	fmt.Fprintln(v.out, "Results:")
	for _, u := range users {
		fmt.Fprintf(v.out, "  %s\t%s\n", u.Email, form.FormatNumber(u.Number))
	}
}

func (v *ConsoleView) ShowNoResults(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.shown = true
	fmt.Fprintln(v.out, message)
}

func (v *ConsoleView) ShowError(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.shown = true
	fmt.Fprintf(v.out, "Error: %s\n", message)
}

// ShowValidation - ошибки формы, до Dispatcher они не доходят
func (v *ConsoleView) ShowValidation(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "Invalid input: %v\n", err)
}
