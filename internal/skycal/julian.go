// Package skycal finds sunrise, sunset, moonrise, moonset and lunar phase
// instants from closed-form solar and lunar series.
package skycal

import (
	"math"
	"time"
)

const (
	secondsPerDay = 86400.0
	unixEpochJD   = 2440587.5
	j2000         = 2451545.0

	degPerRadian   = 180.0 / math.Pi
	hoursPerRadian = 12.0 / math.Pi
)

// julianDay converts t to a Julian date (UT).
func julianDay(t time.Time) float64 {
	return float64(t.UnixNano())/1e9/secondsPerDay + unixEpochJD
}

// fromJulian converts a Julian date (UT) back to a UTC instant.
func fromJulian(jd float64) time.Time {
	secs := (jd - unixEpochJD) * secondsPerDay
	whole := math.Floor(secs)
	return time.Unix(int64(whole), int64(math.Round((secs-whole)*1e9))).UTC()
}

// atanCirc returns the angle of (x, y) in [0, 2π).
func atanCirc(x, y float64) float64 {
	if x == 0 && y == 0 {
		return 0
	}
	theta := math.Atan2(y, x)
	for theta < 0 {
		theta += 2 * math.Pi
	}
	return theta
}

// circulo reduces degrees modulo 360, keeping the sign of x.
func circulo(x float64) float64 {
	return math.Mod(x, 360)
}

// localSiderealTime returns local mean sidereal time in hours at Julian date
// jd for a longitude given in hours west of Greenwich.
func localSiderealTime(jd, longitWest float64) float64 {
	jdInt := math.Trunc(jd)
	jdFrac := jd - jdInt
	var jdMid, ut float64
	if jdFrac < 0.5 {
		jdMid = jdInt - 0.5
		ut = jdFrac + 0.5
	} else {
		jdMid = jdInt + 0.5
		ut = jdFrac - 0.5
	}
	t := (jdMid - j2000) / 36525
	sid := (24110.54841 + 8640184.812866*t + 0.093104*t*t - 6.2e-6*t*t*t) / secondsPerDay
	sid -= math.Trunc(sid)
	sid += 1.0027379093*ut - longitWest/24
	sid = (sid - math.Trunc(sid)) * 24
	if sid < 0 {
		sid += 24
	}
	return sid
}

// ephemerisCorrection returns jd shifted by ΔT, using the NASA polynomial
// fits (Morrison and Stephenson 2004).
func ephemerisCorrection(jd float64) float64 {
	y := (jd-j2000)/365.2425 + 2000
	var t, dt float64
	switch {
	case y < -500:
		t = (y - 1820) / 100
		dt = -20 + 32*t*t
	case y < 500:
		t = y / 100
		dt = 10583.6 - 1014.41*t + 33.78311*t*t - 5.952053*t*t*t - 0.1798452*math.Pow(t, 4) +
			0.022174192*math.Pow(t, 5) + 0.0090316521*math.Pow(t, 6)
	case y < 1600:
		t = (y - 1000) / 100
		dt = 1574.2 - 556.01*t + 71.23472*t*t + 0.319781*t*t*t - 0.8503463*math.Pow(t, 4) -
			0.005050998*math.Pow(t, 5) + 0.0083572073*math.Pow(t, 6)
	case y < 1700:
		t = y - 1600
		dt = 120 - 0.9808*t - 0.01532*t*t + t*t*t/7129
	case y < 1800:
		t = y - 1700
		dt = 8.83 + 0.1603*t - 0.0059285*t*t + 0.00013336*t*t*t - math.Pow(t, 4)/1174000
	case y < 1860:
		t = y - 1800
		dt = 13.72 - 0.332447*t + 0.0068612*t*t + 0.0041116*t*t*t - 0.00037436*math.Pow(t, 4) +
			0.0000121272*math.Pow(t, 5) - 0.0000001699*math.Pow(t, 6) + 0.000000000875*math.Pow(t, 7)
	case y < 1900:
		t = y - 1860
		dt = 7.62 + 0.5737*t - 0.251754*t*t + 0.01680668*t*t*t - 0.0004473624*math.Pow(t, 4) +
			math.Pow(t, 5)/233174
	case y < 1920:
		t = y - 1900
		dt = -2.79 + 1.494119*t - 0.0598939*t*t + 0.0061966*t*t*t - 0.000197*math.Pow(t, 4)
	case y < 1941:
		t = y - 1920
		dt = 21.20 + 0.84493*t - 0.076100*t*t + 0.0020936*t*t*t
	case y < 1961:
		t = y - 1950
		dt = 29.07 + 0.407*t - t*t/233 + t*t*t/2547
	case y < 1986:
		t = y - 1975
		dt = 45.45 + 1.067*t - t*t/260 - t*t*t/718
	case y < 2005:
		t = y - 2000
		dt = 63.86 + 0.3345*t - 0.060374*t*t + 0.0017275*t*t*t + 0.000651814*math.Pow(t, 4) +
			0.00002373599*math.Pow(t, 5)
	case y < 2050:
		t = y - 2000
		dt = 62.92 + 0.32217*t + 0.005589*t*t
	case y < 2150:
		t = (y - 1820) / 100
		dt = -20 + 32*t*t - 0.5628*(2150-y)
	default:
		t = (y - 1820) / 100
		dt = -20 + 32*t*t
	}
	return jd + dt/secondsPerDay
}
