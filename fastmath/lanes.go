package fastmath

// Lanes is the fixed lane width of every kernel step.
const Lanes = 8

// Vec is one lane group of single-precision values.
type Vec [Lanes]float32

// ExpVec replaces every lane of v with e^v.
func ExpVec(v *Vec) {
	for i := range v {
		v[i] = exp32(v[i])
	}
}

// LogVec replaces every lane of v with ln v.
// Non-positive lanes follow math.Log: 0 → -Inf, negative → NaN.
func LogVec(v *Vec) {
	for i := range v {
		v[i] = log32(v[i])
	}
}

// TanhVec replaces every lane of v with tanh v.
func TanhVec(v *Vec) {
	for i := range v {
		v[i] = tanh32(v[i])
	}
}

// LogCoshTanhVec writes log cosh x and tanh x for every lane of x.
func LogCoshTanhVec(x, logCosh, tanh *Vec) {
	for i := range x {
		logCosh[i], tanh[i] = logCoshTanh32(x[i])
	}
}

// Exp writes e^src[i] into dst[i]. dst and src may alias; len(dst) must be >= len(src).
func Exp(dst, src []float32) { apply32(dst, src, ExpVec) }

// Log writes ln src[i] into dst[i].
func Log(dst, src []float32) { apply32(dst, src, LogVec) }

// Tanh writes tanh src[i] into dst[i].
func Tanh(dst, src []float32) { apply32(dst, src, TanhVec) }

// apply32 runs a lane kernel over src in steps of Lanes; the tail is padded
// with zeros and only the valid lanes are written back.
func apply32(dst, src []float32, kernel func(*Vec)) {
	var v Vec
	n := len(src)
	i := 0
	for ; i+Lanes <= n; i += Lanes {
		copy(v[:], src[i:i+Lanes])
		kernel(&v)
		copy(dst[i:i+Lanes], v[:])
	}
	if i < n {
		v = Vec{}
		copy(v[:], src[i:])
		kernel(&v)
		copy(dst[i:n], v[:n-i])
	}
}
