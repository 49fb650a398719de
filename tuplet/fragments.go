package tuplet

// Fragments counts the plain or dotted note values, largest first, needed to
// write a duration as tied notes. Anything below a 128th counts as one more.
func Fragments(d, division int64) int {
	if d <= 0 {
		return 0
	}
	var count int
	for _, v := range noteValues(division) {
		for d >= v {
			d -= v
			count++
		}
	}
	if d > 0 {
		count++
	}
	return count
}

// noteValues lists plain and dotted values from a double whole note down to
// the smallest whole-tick 128th, longest first.
func noteValues(division int64) []int64 {
	smallest := division / 32
	if smallest <= 0 {
		smallest = 1
	}
	var res []int64
	for v := division * 8; v >= smallest; v /= 2 {
		if v != division*8 && v >= 2*smallest {
			res = append(res, v+v/2)
		}
		res = append(res, v)
		if v%2 != 0 {
			break
		}
	}
	return res
}
