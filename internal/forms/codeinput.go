package forms

import "strings"

// CodeLength is the number of slots in a verification code.
const CodeLength = 6

// CodeInput models the six single-digit inputs of the verification form.
type CodeInput struct {
	slots [CodeLength]string
	focus int
}

// NewCodeInput returns an empty input focused on the first slot.
func NewCodeInput() *CodeInput {
	return &CodeInput{}
}

// Type handles a change of slot index to value. It reports whether the code
// became complete and should be submitted.
func (c *CodeInput) Type(index int, value string) bool {
	if index < 0 || index >= CodeLength {
		return false
	}
	digits := onlyDigits(value)
	if len(digits) > 1 {
		return false
	}

	c.slots[index] = digits
	if digits != "" && index < CodeLength-1 {
		c.focus = index + 1
	}
	return len(c.Code()) == CodeLength
}

// Backspace moves focus back when slot index is already empty.
func (c *CodeInput) Backspace(index int) {
	if index <= 0 || index >= CodeLength {
		return
	}
	if c.slots[index] == "" {
		c.focus = index - 1
	}
}

// Paste fills the slots from text, ignoring non-digits and anything past the sixth digit.
// Text without digits leaves the input untouched. It reports whether the code is complete.
func (c *CodeInput) Paste(text string) bool {
	digits := onlyDigits(text)
	if len(digits) > CodeLength {
		digits = digits[:CodeLength]
	}
	if digits == "" {
		return false
	}

	c.slots = [CodeLength]string{}
	for i := 0; i < len(digits); i++ {
		c.slots[i] = digits[i : i+1]
	}
	c.focus = min(len(digits), CodeLength-1)
	return len(digits) == CodeLength
}

// Reset clears every slot and focuses the first one.
func (c *CodeInput) Reset() {
	c.slots = [CodeLength]string{}
	c.focus = 0
}

// Code joins the filled slots.
func (c *CodeInput) Code() string {
	return strings.Join(c.slots[:], "")
}

// Complete reports whether all slots hold a digit.
func (c *CodeInput) Complete() bool {
	for _, slot := range c.slots {
		if slot == "" {
			return false
		}
	}
	return true
}

// Focus returns the index of the focused slot.
func (c *CodeInput) Focus() int {
	return c.focus
}

// Digits returns a copy of the slot values.
func (c *CodeInput) Digits() []string {
	out := make([]string, CodeLength)
	copy(out, c.slots[:])
	return out
}

func onlyDigits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ReplayCodeInput rebuilds the input from submitted slot values, then applies paste when present.
func ReplayCodeInput(slots []string, paste string) *CodeInput {
	c := NewCodeInput()
	for i, value := range slots {
		if i >= CodeLength {
			break
		}
		c.Type(i, strings.TrimSpace(value))
	}
	if strings.TrimSpace(paste) != "" {
		c.Paste(paste)
	}
	return c
}
