package mathutil

// Abramowitz & Stegun polynomial coefficients for I₀(x).
const (
	besselSplit = 3.75 // |x| below this uses the power series

	i0Small1 = 3.5156229
	i0Small2 = 3.0899424
	i0Small3 = 1.2067492
	i0Small4 = 0.2659732
	i0Small5 = 0.360768e-1
	i0Small6 = 0.45813e-2

	i0Large0 = 0.39894228
	i0Large1 = 0.1328592e-1
	i0Large2 = 0.225319e-2
	i0Large3 = -0.157565e-2
	i0Large4 = 0.916281e-2
	i0Large5 = -0.2057706e-1
	i0Large6 = 0.2635537e-1
	i0Large7 = -0.1647633e-1
	i0Large8 = 0.392377e-2
)

// Kaiser & Schafer empirical window formulas.
const (
	kaiserHighAtt   = 50.0
	kaiserMidAtt    = 21.0
	kaiserHighSlope = 0.1102
	kaiserHighBias  = 8.7
	kaiserMidCoeff  = 0.5842
	kaiserMidPower  = 0.4
	kaiserMidLinear = 0.07886

	kaiserLengthBias  = 7.95
	kaiserLengthSlope = 14.36

	minFilterLength = 3
	maxFilterLength = 1 << 18

	fallbackTransitionBW = 0.01
)

// DBPerBit is 20·log10(2), the stopband attenuation gained per bit of precision.
const DBPerBit = 6.0206
