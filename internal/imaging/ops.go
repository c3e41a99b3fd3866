package imaging

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Pixel transforms below are pure: they allocate a new image and never
// mutate the input. Fixed parameters keep variant output deterministic,
// which cache keying relies on.

func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}

// normalize stretches pixel values to the full 0..255 range.
func normalize(g *image.Gray) *image.Gray {
	lo, hi := uint8(255), uint8(0)
	for _, v := range g.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi <= lo {
		return cloneGray(g)
	}
	out := image.NewGray(g.Bounds())
	scale := 255.0 / float64(hi-lo)
	for i, v := range g.Pix {
		out.Pix[i] = uint8(math.Round(float64(v-lo) * scale))
	}
	return out
}

// clippedNormalize stretches the range between the clipPct and 100-clipPct
// histogram percentiles, saturating outliers. More aggressive than
// normalize on low-contrast photos with specular highlights.
func clippedNormalize(g *image.Gray, clipPct float64) *image.Gray {
	total := len(g.Pix)
	if total == 0 {
		return cloneGray(g)
	}
	var hist [256]int
	for _, v := range g.Pix {
		hist[v]++
	}
	clip := int(float64(total) * clipPct / 100.0)

	lo, acc := 0, 0
	for ; lo < 255; lo++ {
		acc += hist[lo]
		if acc > clip {
			break
		}
	}
	hi, acc := 255, 0
	for ; hi > 0; hi-- {
		acc += hist[hi]
		if acc > clip {
			break
		}
	}
	if hi <= lo {
		return cloneGray(g)
	}

	out := image.NewGray(g.Bounds())
	scale := 255.0 / float64(hi-lo)
	for i, v := range g.Pix {
		switch {
		case int(v) <= lo:
			out.Pix[i] = 0
		case int(v) >= hi:
			out.Pix[i] = 255
		default:
			out.Pix[i] = uint8(math.Round(float64(int(v)-lo) * scale))
		}
	}
	return out
}

// stretchContrast applies linear gain around the midpoint.
func stretchContrast(g *image.Gray, gain float64) *image.Gray {
	out := image.NewGray(g.Bounds())
	for i, v := range g.Pix {
		out.Pix[i] = clamp8((float64(v)-128.0)*gain + 128.0)
	}
	return out
}

// boxBlur3 is a 3x3 mean filter with edge replication.
func boxBlur3(g *image.Gray) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum int
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					sum += int(g.GrayAt(b.Min.X+clampi(x+dx, 0, w-1), b.Min.Y+clampi(y+dy, 0, h-1)).Y)
				}
			}
			out.SetGray(b.Min.X+x, b.Min.Y+y, grayOf(float64(sum)/9.0))
		}
	}
	return out
}

// convolve3x3 applies a 3x3 kernel with edge replication.
func convolve3x3(g *image.Gray, k [9]float64) *image.Gray {
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(b)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			ki := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					v := g.GrayAt(b.Min.X+clampi(x+dx, 0, w-1), b.Min.Y+clampi(y+dy, 0, h-1)).Y
					sum += k[ki] * float64(v)
					ki++
				}
			}
			out.SetGray(b.Min.X+x, b.Min.Y+y, grayOf(sum))
		}
	}
	return out
}

// sharpen is unsharp masking: v + amount*(v - blurred v).
func sharpen(g *image.Gray, amount float64) *image.Gray {
	blurred := boxBlur3(g)
	out := image.NewGray(g.Bounds())
	for i, v := range g.Pix {
		out.Pix[i] = clamp8(float64(v) + amount*(float64(v)-float64(blurred.Pix[i])))
	}
	return out
}

// upscale resamples with the Catmull-Rom kernel. Small receipt photos gain
// legibility for dense thermal-printer fonts.
func upscale(img image.Image, factor float64) *image.Gray {
	b := img.Bounds()
	w := int(math.Round(float64(b.Dx()) * factor))
	h := int(math.Round(float64(b.Dy()) * factor))
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func cloneGray(g *image.Gray) *image.Gray {
	out := image.NewGray(g.Bounds())
	copy(out.Pix, g.Pix)
	return out
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(math.Round(v))
}

func clampi(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func grayOf(v float64) color.Gray {
	return color.Gray{Y: clamp8(v)}
}
