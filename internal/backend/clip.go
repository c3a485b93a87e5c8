package backend

import (
	"github.com/chewxy/math32"
	"github.com/ethaniccc/float32-cube/cube"
	"github.com/go-gl/mathgl/mgl32"
)

// clipEpsilon absorbs float32 rounding so resting boxes read as touching.
const clipEpsilon = 1e-5

type clipResult struct {
	penetration float32
	delta       mgl32.Vec3
}

// clipCollide limits the displacement delta of moving so it does not enter
// stationary. When the boxes already overlap, the displacement is adjusted
// on the axis of least penetration to push moving out instead.
func clipCollide(stationary, moving cube.BBox, delta mgl32.Vec3) (result clipResult) {
	result.delta = delta
	if stationary.Min() == stationary.Max() {
		return
	}

	var (
		axisPen       [3]float32
		axisPenSigned [3]float32
		normalDirs    [3]float32
	)
	separating, sepAxis := 0, 0

	for i := 0; i < 3; i++ {
		minPen := moving.Max()[i] - stationary.Min()[i]
		maxPen := stationary.Max()[i] - moving.Min()[i]
		if math32.Abs(minPen) <= clipEpsilon {
			minPen = 0
		}
		if math32.Abs(maxPen) <= clipEpsilon {
			maxPen = 0
		}

		minPos := math32.Max(0, minPen)
		maxPos := math32.Max(0, maxPen)

		switch {
		case minPos == 0:
			axisPenSigned[i] = minPen
			normalDirs[i] = -1
			separating++
			sepAxis = i
		case maxPos == 0:
			axisPenSigned[i] = maxPen
			normalDirs[i] = 1
			separating++
			sepAxis = i
		case minPos < maxPos:
			axisPen[i] = minPos
			axisPenSigned[i] = minPos
			normalDirs[i] = -1
		default:
			axisPen[i] = maxPos
			axisPenSigned[i] = maxPos
			normalDirs[i] = 1
		}

		if separating > 1 {
			return
		}
	}

	if separating == 0 {
		best := 0
		for i := 1; i < 3; i++ {
			if axisPen[i] < axisPen[best] {
				best = i
			}
		}
		result.penetration = axisPen[best]
		push := axisPen[best] * normalDirs[best]
		if push > 0 {
			result.delta[best] = math32.Max(push, delta[best])
		} else {
			result.delta[best] = math32.Min(push, delta[best])
		}
		return
	}

	swept := axisPenSigned[sepAxis] - normalDirs[sepAxis]*delta[sepAxis]
	if swept <= 0 {
		return
	}
	result.delta[sepAxis] = axisPenSigned[sepAxis] * normalDirs[sepAxis]
	return
}

// clipAxis moves every part by delta along one axis, clipped against every
// obstacle in order. It returns the displacement actually applied and the
// deepest overlap it had to resolve.
func clipAxis(parts []cube.BBox, obstacles []cube.BBox, delta mgl32.Vec3) (mgl32.Vec3, float32) {
	var penetration float32
	for _, p := range parts {
		for i := len(obstacles) - 1; i >= 0; i-- {
			r := clipCollide(obstacles[i], p, delta)
			delta = r.delta
			penetration = math32.Max(penetration, r.penetration)
		}
	}
	for i := range parts {
		parts[i] = parts[i].Translate(delta)
	}
	return delta, penetration
}
