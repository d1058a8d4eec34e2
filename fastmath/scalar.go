package fastmath

import "math"

// MaxRelError bounds the relative error of ExpVec, LogVec and TanhVec over
// finite float32 inputs. Evaluator switches to exact math below it.
const MaxRelError = 1e-6

// Range limits and reduction constants (single precision).
const (
	expOverflow  float32 = 88.72283905206835
	expUnderflow float32 = -87.33654475055310
	log2e        float32 = 1.44269504088896341
	ln2Hi        float32 = 0.693359375
	ln2Lo        float32 = -2.12194440e-4
	sqrtHalf     float32 = 0.707106781186547524
	ln2          float32 = 0.693147180559945309
	minNormal    float32 = 1.17549435e-38
	tanhSmall    float32 = 0.625
	tanhSat      float32 = 9.01
	logCoshSmall float32 = 0.25
)

// exp32 computes e^x in single precision.
// Stage 1: clamp the representable range.
// Stage 2: x = k*ln2 + r with |r| <= ln2/2 (ln2 split into hi/lo parts).
// Stage 3: e^r by polynomial, then scale by 2^k through the exponent bits.
func exp32(x float32) float32 {
	if x != x {
		return x // NaN
	}
	if x > expOverflow {
		return float32(math.Inf(1))
	}
	if x < expUnderflow {
		return 0
	}

	t := x*log2e + 0.5
	k := int32(t)
	if float32(k) > t { // floor for negative t
		k--
	}
	fk := float32(k)
	r := x - fk*ln2Hi
	r -= fk * ln2Lo

	p := float32(1.9875691500e-4)
	p = p*r + 1.3981999507e-3
	p = p*r + 8.3334519073e-3
	p = p*r + 4.1665795894e-2
	p = p*r + 1.6666665459e-1
	p = p*r + 5.0000001201e-1
	p = p*r*r + r + 1

	if k > 127 { // 2^128 is not a normal float32
		p *= 2
		k--
	}

	return p * math.Float32frombits(uint32(k+127)<<23)
}

// log32 computes ln x in single precision.
// x = m * 2^e with m in [sqrt(1/2), sqrt(2)); ln x = e*ln2 + ln(1+f), f = m-1.
func log32(x float32) float32 {
	switch {
	case x != x || x < 0:
		return float32(math.NaN())
	case x == 0:
		return float32(math.Inf(-1))
	case math.IsInf(float64(x), 1):
		return x
	}

	var e int32
	if x < minNormal { // subnormal: renormalize first
		x *= 1 << 23
		e = -23
	}
	bits := math.Float32bits(x)
	e += int32(bits>>23) - 126
	f := math.Float32frombits(bits&0x007fffff | 0x3f000000) // [0.5, 1)
	if f < sqrtHalf {
		e--
		f = f + f - 1
	} else {
		f--
	}

	z := f * f
	p := float32(7.0376836292e-2)
	p = p*f - 1.1514610310e-1
	p = p*f + 1.1676998740e-1
	p = p*f - 1.2420140846e-1
	p = p*f + 1.4249322787e-1
	p = p*f - 1.6668057665e-1
	p = p*f + 2.0000714765e-1
	p = p*f - 2.4999993993e-1
	p = p*f + 3.3333331174e-1
	y := p * f * z

	fe := float32(e)
	y += ln2Lo * fe
	y -= 0.5 * z

	return f + y + ln2Hi*fe
}

// tanh32 computes tanh x in single precision.
func tanh32(x float32) float32 {
	ax := x
	if ax < 0 {
		ax = -ax
	}
	switch {
	case x != x:
		return x
	case ax < tanhSmall:
		z := x * x
		p := float32(-5.70498872745e-3)
		p = p*z + 2.06390887954e-2
		p = p*z - 5.37397155531e-2
		p = p*z + 1.33314422036e-1
		p = p*z - 3.33332819422e-1
		return p*z*x + x
	case ax > tanhSat:
		return copySign(1, x)
	}
	e := exp32(-2 * ax)

	return copySign((1-e)/(1+e), x)
}

// logCoshTanh32 returns (log cosh x, tanh x) sharing one exponential.
// log cosh x = |x| + ln(1 + e^{-2|x|}) - ln2, which never overflows.
func logCoshTanh32(x float32) (float32, float32) {
	ax := x
	if ax < 0 {
		ax = -ax
	}
	if x != x {
		return x, x
	}
	if ax < logCoshSmall {
		// Taylor series; avoids cancellation of |x| against ln2.
		z := x * x
		p := float32(31.0 / 14175.0)
		p = p*z - 17.0/2520.0
		p = p*z + 1.0/45.0
		p = p*z - 1.0/12.0
		p = p*z + 0.5
		return p * z, tanh32(x)
	}
	e := exp32(-2 * ax)
	lc := ax + log32(1+e) - ln2
	if ax > tanhSat {
		return lc, copySign(1, x)
	}
	if ax < tanhSmall {
		return lc, tanh32(x)
	}

	return lc, copySign((1-e)/(1+e), x)
}

func copySign(v, sign float32) float32 {
	if sign < 0 {
		return -v
	}

	return v
}
