package util

import (
	"math"
)

// MovingWindow keeps the mean and standard deviation of the last Cap values
// pushed into it.
//
// Values live in a fixed ring. The running sum and sum of squares are updated
// on every push and drop, so a stats call is constant time.
type MovingWindow struct {
	values []float64
	head   int // index of the oldest value
	length int

	sum     float64
	squares float64

	average float64
	stddev  float64
}

// NewMovingWindow returns a new moving window.
func NewMovingWindow(size int) *MovingWindow {
	if size < 1 {
		size = 1
	}

	return &MovingWindow{
		values: make([]float64, size),
	}
}

func (mw *MovingWindow) calcFinal() (float64, float64) {
	if mw.length > 0 {
		mw.average = mw.sum / float64(mw.length)
	} else {
		mw.average = 0
	}

	if mw.length > 1 {
		n := float64(mw.length)
		variance := (mw.squares - n*mw.average*mw.average) / (n - 1)
		// rounding can push a flat window slightly negative
		mw.stddev = math.Sqrt(math.Max(variance, 0))
	} else {
		mw.stddev = 0
	}

	return mw.average, mw.stddev
}

// Update pushes value, dropping the oldest one when full, and returns the new
// mean and standard deviation.
func (mw *MovingWindow) Update(value float64) (float64, float64) {
	if mw.length < len(mw.values) {
		mw.values[(mw.head+mw.length)%len(mw.values)] = value
		mw.length++
	} else {
		old := mw.values[mw.head]
		mw.sum -= old
		mw.squares -= old * old

		mw.values[mw.head] = value
		mw.head = (mw.head + 1) % len(mw.values)
	}

	mw.sum += value
	mw.squares += value * value

	return mw.calcFinal()
}

// Drop removes the count oldest values.
func (mw *MovingWindow) Drop(count int) (float64, float64) {
	for count > 0 && mw.length > 0 {
		old := mw.values[mw.head]
		mw.sum -= old
		mw.squares -= old * old

		mw.head = (mw.head + 1) % len(mw.values)
		mw.length--
		count--
	}

	if mw.length == 0 {
		mw.Recalculate()
	}

	return mw.calcFinal()
}

// Recalculate rebuilds the running sums from the stored values. Long runs
// accumulate rounding error in the sums; call this now and then to shed it.
func (mw *MovingWindow) Recalculate() (float64, float64) {
	mw.sum, mw.squares = 0, 0

	for i := 0; i < mw.length; i++ {
		v := mw.values[(mw.head+i)%len(mw.values)]
		mw.sum += v
		mw.squares += v * v
	}

	return mw.calcFinal()
}

// Len returns how many items in the window
func (mw *MovingWindow) Len() int {
	return mw.length
}

// Cap returns max size of window
func (mw *MovingWindow) Cap() int {
	return len(mw.values)
}

// Mean is the moving window average
func (mw *MovingWindow) Mean() float64 {
	return mw.average
}

// StdDev is the moving window sample standard deviation
func (mw *MovingWindow) StdDev() float64 {
	return mw.stddev
}

// Stats returns the statistics of this window
func (mw *MovingWindow) Stats() (float64, float64) {
	return mw.average, mw.stddev
}

// Cents returns the distance from ref to freq in hundredths of a semitone.
func Cents(freq, ref float64) float64 {
	if freq <= 0 || ref <= 0 {
		return 0
	}
	return 1200 * math.Log2(freq/ref)
}
