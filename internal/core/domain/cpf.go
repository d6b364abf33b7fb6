package domain

const cpfLength = 11

// NormalizeCPF drops every non-digit character.
func NormalizeCPF(s string) string {
	out := make([]byte, 0, cpfLength)
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// ValidCPF reports whether s carries 11 digits whose two trailing check
// digits match the weighted modulo-11 scheme. Formatting characters are
// ignored.
func ValidCPF(s string) bool {
	digits := NormalizeCPF(s)
	if len(digits) != cpfLength {
		return false
	}

	d := make([]int, cpfLength)
	for i := range digits {
		d[i] = int(digits[i] - '0')
	}

	return cpfCheckDigit(d[:9], 10) == d[9] && cpfCheckDigit(d[:10], 11) == d[10]
}

func cpfCheckDigit(d []int, firstWeight int) int {
	sum := 0
	for i, v := range d {
		sum += v * (firstWeight - i)
	}
	r := 11 - sum%11
	if r >= 10 {
		return 0
	}
	return r
}
