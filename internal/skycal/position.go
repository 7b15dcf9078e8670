package skycal

import "math"

const flattening = 0.003352813 // 1/298.257

// sunPosition returns the low precision apparent right ascension (hours)
// and declination (degrees) of the sun.
func sunPosition(jd float64) (ra, dec float64) {
	n := jd - j2000
	l := 280.460 + 0.9856474*n
	g := (357.528 + 0.9856003*n) / degPerRadian
	lambda := (l + 1.915*math.Sin(g) + 0.020*math.Sin(2*g)) / degPerRadian
	epsilon := (23.439 - 0.0000004*n) / degPerRadian

	x := math.Cos(lambda)
	y := math.Cos(epsilon) * math.Sin(lambda)
	z := math.Sin(epsilon) * math.Sin(lambda)
	return atanCirc(x, y) * hoursPerRadian, math.Asin(z) * degPerRadian
}

// lunarTerm is one periodic term of the lunar series. The argument is
// d·D + m·M + mpr·M' + f·F and the coefficient is scaled by e^ePow.
type lunarTerm struct {
	coef         float64
	ePow         int
	d, m, mpr, f float64
}

func (lt lunarTerm) arg(d, m, mpr, f float64) float64 {
	return lt.d*d + lt.m*m + lt.mpr*mpr + lt.f*f
}

func (lt lunarTerm) scale(e float64) float64 {
	switch lt.ePow {
	case 1:
		return lt.coef * e
	case 2:
		return lt.coef * e * e
	}
	return lt.coef
}

// Ecliptic longitude terms (degrees, sine series).
var longitudeTerms = []lunarTerm{
	{6.288750, 0, 0, 0, 1, 0},
	{1.274018, 0, 2, 0, -1, 0},
	{0.658309, 0, 2, 0, 0, 0},
	{0.213616, 0, 0, 0, 2, 0},
	{-0.185596, 1, 0, 1, 0, 0},
	{-0.114336, 0, 0, 0, 0, 2},
	{0.058793, 0, 2, 0, -2, 0},
	{0.057212, 1, 2, -1, -1, 0},
	{0.053320, 0, 2, 0, 1, 0},
	{0.045874, 1, 2, -1, 0, 0},
	{0.041024, 1, 0, -1, 1, 0},
	{-0.034718, 0, 1, 0, 0, 0},
	{-0.030465, 1, 0, 1, 1, 0},
	{0.015326, 0, 2, 0, 0, -2},
	{-0.012528, 0, 0, 0, 1, 2},
	{-0.010980, 0, 0, 0, -1, 2},
	{0.010674, 0, 4, 0, -1, 0},
	{0.010034, 0, 0, 0, 3, 0},
	{0.008548, 0, 4, 0, -2, 0},
	{-0.007910, 1, 2, 1, -1, 0},
	{-0.006783, 1, 2, 1, 0, 0},
	{0.005162, 0, -1, 0, 1, 0},
	{0.005000, 1, 1, 1, 0, 0},
	{0.004049, 1, 2, -1, 1, 0},
	{0.003996, 0, 2, 0, 2, 0},
	{0.003862, 0, 4, 0, 0, 0},
	{0.003665, 0, 2, 0, -3, 0},
	{0.002695, 1, 0, -1, 2, 0},
	{0.002602, 0, -2, 0, 1, -2},
	{0.002396, 1, 2, -1, -2, 0},
	{-0.002349, 0, 1, 0, 1, 0},
	{0.002249, 2, 2, -2, 0, 0},
	{-0.002125, 1, 0, 1, 2, 0},
	{-0.002079, 2, 0, 2, 0, 0},
	{0.002059, 2, 2, -2, -1, 0},
	{-0.001773, 0, 2, 0, 1, -2},
	{-0.001595, 0, 2, 0, 0, 2},
	{0.001220, 1, 4, -1, -1, 0},
	{-0.001110, 0, 0, 0, 2, 2},
	{0.000892, 0, -3, 0, 1, 0},
	{-0.000811, 1, 2, 1, 1, 0},
	{0.000761, 1, 4, -1, -2, 0},
	{0.000717, 2, 0, -2, 1, 0},
	{0.000704, 2, -2, -2, 1, 0},
	{0.000693, 1, 2, 1, -2, 0},
	{0.000598, 1, 2, -1, 0, -2},
	{0.000550, 0, 4, 0, 1, 0},
	{0.000538, 0, 0, 0, 4, 0},
	{0.000521, 1, 4, -1, 0, 0},
	{0.000486, 0, -1, 0, 2, 0},
}

// Ecliptic latitude terms (degrees, sine series).
var latitudeTerms = []lunarTerm{
	{5.128189, 0, 0, 0, 0, 1},
	{0.280606, 0, 0, 0, 1, 1},
	{0.277693, 0, 0, 0, 1, -1},
	{0.173238, 0, 2, 0, 0, -1},
	{0.055413, 0, 2, 0, -1, 1},
	{0.046272, 0, 2, 0, -1, -1},
	{0.032573, 0, 2, 0, 0, 1},
	{0.017198, 0, 0, 0, 2, 1},
	{0.009267, 0, 2, 0, 1, -1},
	{0.008823, 0, 0, 0, 2, -1},
	{0.008247, 1, 2, -1, 0, -1},
	{0.004323, 0, 2, 0, -2, -1},
	{0.004200, 0, 2, 0, 1, 1},
	{0.003372, 1, -2, -1, 0, 1},
	{0.002472, 0, 2, -1, -1, 1},
	{0.002222, 1, 2, -1, 0, 1},
	{0.002072, 1, 2, -1, -1, -1},
	{0.001877, 1, 0, -1, 1, 1},
	{0.001828, 0, 4, 0, -1, -1},
	{-0.001803, 1, 0, 1, 0, 1},
	{-0.001750, 0, 0, 0, 0, 3},
	{0.001570, 1, 0, -1, 1, -1},
	{-0.001487, 0, 1, 0, 0, 1},
	{-0.001481, 1, 0, 1, 1, 1},
	{0.001417, 1, 0, -1, -1, 1},
	{0.001350, 1, 0, -1, 0, 1},
	{0.001330, 0, -1, 0, 0, 1},
	{0.001106, 0, 0, 0, 3, 1},
	{0.001020, 0, 4, 0, 0, -1},
	{0.000833, 0, 4, 0, -1, 1},
	{0.000781, 0, 0, 0, 1, -3},
	{0.000670, 0, 4, 0, -2, 1},
	{0.000606, 0, 2, 0, 0, -3},
	{0.000597, 0, 2, 0, 2, -1},
	{0.000492, 1, 2, -1, 1, -1},
	{0.000450, 0, -2, 0, 2, -1},
	{0.000439, 0, 0, 0, 3, -1},
	{0.000423, 0, 2, 0, 2, 1},
	{0.000422, 0, 2, 0, -3, -1},
	{-0.000367, 1, 2, 1, -1, 1},
	{-0.000353, 1, 2, 1, 0, 1},
	{0.000331, 0, 4, 0, 0, 1},
	{0.000317, 1, 2, -1, 1, 1},
	{0.000306, 2, 2, -2, 0, -1},
	{-0.000283, 0, 0, 0, 1, 3},
}

// Horizontal parallax terms (degrees, cosine series).
var parallaxTerms = []lunarTerm{
	{0.051818, 0, 0, 0, 1, 0},
	{0.009531, 0, 2, 0, -1, 0},
	{0.007843, 0, 2, 0, 0, 0},
	{0.002824, 0, 0, 0, 2, 0},
	{0.000857, 0, 2, 0, 1, 0},
	{0.000533, 1, 2, -1, 0, 0},
	{0.000401, 1, 2, -1, -1, 0},
	{0.000320, 1, 0, -1, 1, 0},
	{-0.000271, 0, 1, 0, 0, 0},
	{-0.000264, 1, 0, 1, 1, 0},
	{-0.000198, 0, 0, 0, -1, 2},
	{0.000173, 0, 0, 0, 3, 0},
	{0.000167, 0, 4, 0, -1, 0},
	{-0.000111, 1, 0, 1, 0, 0},
	{0.000103, 0, 4, 0, -2, 0},
	{-0.000084, 0, -2, 0, 2, 0},
	{-0.000083, 1, 2, 1, 0, 0},
	{0.000079, 0, 2, 0, 2, 0},
	{0.000072, 0, 4, 0, 0, 0},
	{0.000064, 1, 2, -1, 1, 0},
	{-0.000063, 1, 2, 1, -1, 0},
	{0.000041, 1, 1, 1, 0, 0},
	{0.000035, 1, 0, -1, 2, 0},
	{-0.000033, 0, -2, 0, 3, 0},
	{-0.000030, 0, 1, 0, 1, 0},
	{-0.000029, 0, -2, 0, 0, 2},
	{-0.000029, 1, 0, 1, 2, 0},
	{0.000026, 2, 2, -2, 0, 0},
	{-0.000023, 0, -2, 0, 1, 2},
	{0.000019, 1, 4, -1, -1, 0},
}

func sumSeries(terms []lunarTerm, trig func(float64) float64, e, d, m, mpr, f float64) float64 {
	var sum float64
	for _, lt := range terms {
		sum += lt.scale(e) * trig(lt.arg(d, m, mpr, f))
	}
	return sum
}

func sinDeg(x float64) float64 { return math.Sin(x / degPerRadian) }

// moonPosition returns the topocentric right ascension (hours) and
// declination (degrees) of the moon for an observer at sea level at
// latitude lat (degrees) whose local sidereal time is sid (hours).
func moonPosition(jd, lat, sid float64) (ra, dec float64) {
	jd = ephemerisCorrection(jd)
	t := (jd - 2415020) / 36525
	t2 := t * t
	t3 := t2 * t

	lpr := circulo(270.434164 + 481267.8831*t - 0.001133*t2 + 0.0000019*t3)
	m := circulo(358.475833 + 35999.0498*t - 0.000150*t2 - 0.0000033*t3)
	mpr := circulo(296.104608 + 477198.8491*t + 0.009192*t2 + 0.0000144*t3)
	d := circulo(350.737486 + 445267.1142*t - 0.001436*t2 + 0.0000019*t3)
	f := circulo(11.250889 + 483202.0251*t - 0.003211*t2 - 0.0000003*t3)
	om := circulo(259.183275 - 1934.1420*t + 0.002078*t2 + 0.0000022*t3)

	s := sinDeg(51.2 + 20.2*t)
	lpr += 0.000233 * s
	m -= 0.001778 * s
	mpr += 0.000817 * s
	d += 0.002011 * s

	s = 0.003964 * sinDeg(346.560+132.870*t-0.0091731*t2)
	lpr += s
	mpr += s
	d += s
	f += s

	s = sinDeg(om)
	lpr += 0.001964 * s
	mpr += 0.002541 * s
	d += 0.001964 * s
	f -= 0.024691 * s
	f -= 0.004328 * sinDeg(om+275.05-2.30*t)

	e := 1 - 0.002495*t - 0.00000752*t2

	m /= degPerRadian
	mpr /= degPerRadian
	d /= degPerRadian
	f /= degPerRadian

	lambda := lpr + sumSeries(longitudeTerms, math.Sin, e, d, m, mpr, f)
	b := sumSeries(latitudeTerms, math.Sin, e, d, m, mpr, f)
	om1 := 0.0004664 * math.Cos(om/degPerRadian)
	om2 := 0.0000754 * math.Cos((om+275.05-2.30*t)/degPerRadian)
	beta := b * (1 - om1 - om2)
	pie := 0.950724 + sumSeries(parallaxTerms, math.Cos, e, d, m, mpr, f)

	beta /= degPerRadian
	lambda /= degPerRadian
	l := math.Cos(lambda) * math.Cos(beta)
	mm := math.Sin(lambda) * math.Cos(beta)
	n := math.Sin(beta)
	mm, n = eclipticToEquatorial(jd, mm, n)

	dist := 1 / math.Sin(pie/degPerRadian)
	xg, yg, zg := geocentric(sid, lat)
	x := l*dist - xg
	y := mm*dist - yg
	z := n*dist - zg
	topo := math.Sqrt(x*x + y*y + z*z)

	return atanCirc(x/topo, y/topo) * hoursPerRadian, math.Asin(z/topo) * degPerRadian
}

// eclipticToEquatorial rotates the y and z components of an ecliptic unit
// vector of date into equatorial coordinates. x is unchanged.
func eclipticToEquatorial(jd, y, z float64) (float64, float64) {
	t := (jd - j2000) / 36525
	incl := (23.439291 + t*(-0.0130042-0.00000016*t)) / degPerRadian
	return math.Cos(incl)*y - math.Sin(incl)*z, math.Sin(incl)*y + math.Cos(incl)*z
}

// geocentric returns the observer's position in earth radii for a sidereal
// longitude in hours and a geodetic latitude in degrees, at sea level.
func geocentric(longHours, lat float64) (x, y, z float64) {
	lat /= degPerRadian
	long := longHours / hoursPerRadian
	denom := (1 - flattening) * math.Sin(lat)
	denom = math.Cos(lat)*math.Cos(lat) + denom*denom
	c := 1 / math.Sqrt(denom)
	s := (1 - flattening) * (1 - flattening) * c
	return c * math.Cos(lat) * math.Cos(long), c * math.Cos(lat) * math.Sin(long), s * math.Sin(lat)
}

// altit returns the altitude in degrees of an object at declination dec
// (degrees) and hour angle ha (hours) seen from latitude lat (degrees).
func altit(dec, ha, lat float64) float64 {
	dec /= degPerRadian
	ha /= hoursPerRadian
	lat /= degPerRadian
	return degPerRadian * math.Asin(math.Cos(dec)*math.Cos(ha)*math.Cos(lat)+math.Sin(dec)*math.Sin(lat))
}

// altitude returns the altitude in degrees of body at jd, for latitude in
// degrees and longitude in hours west.
func altitude(jd, lat, longitWest float64, body Body) float64 {
	sid := localSiderealTime(jd, longitWest)
	var ra, dec float64
	if body == Moon {
		ra, dec = moonPosition(jd, lat, sid)
	} else {
		ra, dec = sunPosition(jd)
	}
	return altit(dec, sid-ra, lat)
}
