package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantMsg    string
		wantCat    Category
		wantStatus int
	}{
		{
			name:       "config error",
			code:       "E101",
			wantMsg:    "Configuration file not found",
			wantCat:    CategoryConfig,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "validation error",
			code:       "E202",
			wantMsg:    "Unknown toast position",
			wantCat:    CategoryValidation,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found",
			code:       "E205",
			wantMsg:    "Toast not found",
			wantCat:    CategoryValidation,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown error code",
			code:       "E999",
			wantMsg:    "Unknown error",
			wantCat:    "",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
			if err.HTTPStatus() != tt.wantStatus {
				t.Errorf("HTTPStatus() = %d, want %d", err.HTTPStatus(), tt.wantStatus)
			}
		})
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "file %q not found", "toast.json")
	if err.Message != `file "toast.json" not found` {
		t.Errorf("Message = %q, want %q", err.Message, `file "toast.json" not found`)
	}
	if err.Category != CategoryCLI {
		t.Errorf("Category = %q, want %q", err.Category, CategoryCLI)
	}
}

func TestToastError_Error(t *testing.T) {
	err := New("E201")
	if got, want := err.Error(), "E201: Unknown toast type"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	wrapped := New("E102").Wrap(fmt.Errorf("unexpected EOF"))
	if got, want := wrapped.Error(), "E102: Invalid configuration file: unexpected EOF"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	// Without code
	err2 := &ToastError{Message: "test error"}
	if err2.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "test error")
	}
}

func TestToastError_Builders(t *testing.T) {
	err := New("E103").
		WithLocation("toast.yaml", 4).
		WithDetailf("duration %q", "-1s").
		WithSuggestion("Use 0s for sticky toasts").
		WithStatus(http.StatusUnprocessableEntity)

	if err.Location.String() != "toast.yaml:4" {
		t.Errorf("Location = %q", err.Location.String())
	}
	if err.Detail != `duration "-1s"` {
		t.Errorf("Detail = %q", err.Detail)
	}
	if err.Suggestion != "Use 0s for sticky toasts" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if err.HTTPStatus() != http.StatusUnprocessableEntity {
		t.Errorf("HTTPStatus() = %d", err.HTTPStatus())
	}
}

func TestToastError_Wrap(t *testing.T) {
	inner := New("E203")
	outer := New("E204").Wrap(inner)

	if outer.Wrapped != inner {
		t.Error("Wrapped error mismatch")
	}
	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
	if !stderrors.Is(outer, New("E203")) {
		t.Error("errors.Is should match wrapped code")
	}
	if stderrors.Is(New("E201"), New("E202")) {
		t.Error("errors.Is should not match different codes")
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E302") != nil {
		t.Error("FromError(nil, ...) should return nil")
	}

	te := New("E201")
	if FromError(te, "E302") != te {
		t.Error("FromError should return ToastError as-is")
	}
	if FromError(fmt.Errorf("context: %w", te), "E302") != te {
		t.Error("FromError should unwrap to an existing ToastError")
	}

	stdErr := &testError{msg: "test error"}
	result := FromError(stdErr, "E302")
	if result.Wrapped != stdErr || result.Code != "E302" {
		t.Error("Standard error should be wrapped")
	}
}

func TestHasCode(t *testing.T) {
	err := fmt.Errorf("loading: %w", New("E101"))
	if !HasCode(err, "E101") {
		t.Error("expected HasCode to find E101")
	}
	if HasCode(err, "E102") {
		t.Error("expected HasCode to reject E102")
	}
	if HasCode(stderrors.New("plain"), "E101") {
		t.Error("expected HasCode to reject plain errors")
	}
}

type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{name: "nil location", loc: nil, want: ""},
		{name: "with line", loc: &Location{File: "toast.yaml", Line: 10}, want: "toast.yaml:10"},
		{name: "without line", loc: &Location{File: "toast.json"}, want: "toast.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E102").
		WithLocation("/srv/toast.json", 0).
		Wrap(fmt.Errorf("invalid character")).
		WithSuggestion("Check that toast.json is valid JSON")

	formatted := err.Format()

	for _, want := range []string{"E102", "Invalid configuration file", "/srv/toast.json", "Cause: invalid character", "Hint:", "Learn more:"} {
		if !strings.Contains(formatted, want) {
			t.Errorf("Format should contain %q:\n%s", want, formatted)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E103").WithLocation("toast.yaml", 3)
	want := "toast.yaml:3: E103: Invalid configuration value"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	err := New("E205").WithDetail("toast 7").Wrap(fmt.Errorf("gone"))

	data, mErr := json.Marshal(err)
	if mErr != nil {
		t.Fatal(mErr)
	}
	for _, want := range []string{`"code":"E205"`, `"category":"validation"`, `"message":"Toast not found"`, `"cause":"gone"`} {
		if !bytes.Contains(data, []byte(want)) {
			t.Errorf("JSON should contain %s: %s", want, data)
		}
	}

	var back ToastError
	if uErr := json.Unmarshal(data, &back); uErr != nil {
		t.Fatal(uErr)
	}
	if back.Code != "E205" || back.Detail != "toast 7" || back.HTTPStatus() != http.StatusNotFound {
		t.Errorf("unexpected decoded error %+v", back)
	}
	if back.Wrapped == nil || back.Wrapped.Error() != "gone" {
		t.Errorf("expected cause to survive, got %v", back.Wrapped)
	}
}

func TestGetAllCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("GetAllCodes() should return codes")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] > codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
	if got := GetCodesByCategory(CategoryTransport); len(got) == 0 || got[0] != "E301" {
		t.Errorf("unexpected transport codes %v", got)
	}
}

func TestRegister(t *testing.T) {
	Register("E999", ErrorTemplate{
		Category: CategoryCLI,
		Message:  "Custom test error",
		Status:   http.StatusTeapot,
	})
	defer delete(registry, "E999")

	err := New("E999")
	if err.Message != "Custom test error" {
		t.Errorf("Message = %q, want %q", err.Message, "Custom test error")
	}
	if _, ok := GetTemplate("E999"); !ok {
		t.Error("E999 should be registered")
	}
}

func TestWrapText(t *testing.T) {
	got := wrapText("short text", 100)
	if len(got) != 1 || got[0] != "short text" {
		t.Errorf("wrapText short text: got %v", got)
	}

	got = wrapText("this is a longer text that should be wrapped", 20)
	if len(got) != 3 {
		t.Errorf("wrapText long text: expected 3 lines, got %d: %v", len(got), got)
	}

	if got = wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: expected empty, got %v", got)
	}
}

func TestPrint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Print(&buf, fmt.Errorf("serve: %w", New("E302")))
	if !strings.Contains(buf.String(), "ERROR E302: Server failed") {
		t.Errorf("unexpected output %q", buf.String())
	}

	buf.Reset()
	Print(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("test"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}

	DisableColors()
	if strings.Contains(red("test"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
