package assets

import (
	"strings"

	"github.com/flavioheleno/wxpanel/image4bit"
)

// Transparent marks an icon pixel that is not drawn. It lies outside the
// 0-15 range of display levels.
const Transparent uint8 = 0xFF

// Icon is a small grayscale bitmap. Pix holds W*H display levels in row
// order; pixels equal to Transparent are skipped when drawing.
type Icon struct {
	W, H int
	Pix  []uint8
}

// At returns the level at (x, y) and whether it is opaque.
func (ic *Icon) At(x, y int) (image4bit.Gray4, bool) {
	v := ic.Pix[y*ic.W+x]
	if v == Transparent {
		return image4bit.Gray4{}, false
	}
	return image4bit.Gray4{Y: v}, true
}

// iconLevels maps art characters to display levels.
var iconLevels = map[rune]uint8{
	'.': Transparent,
	'#': 15,
	'o': 12,
	'+': 9,
	'-': 5,
}

// parseIcon builds an Icon from rows of equal length. It panics on ragged
// rows or unknown characters, so bad art fails at init.
func parseIcon(art string) *Icon {
	rows := strings.Fields(art)
	ic := &Icon{W: len(rows[0]), H: len(rows)}
	ic.Pix = make([]uint8, 0, ic.W*ic.H)
	for _, row := range rows {
		if len(row) != ic.W {
			panic("assets: ragged icon row " + row)
		}
		for _, c := range row {
			v, ok := iconLevels[c]
			if !ok {
				panic("assets: unknown icon character " + string(c))
			}
			ic.Pix = append(ic.Pix, v)
		}
	}
	return ic
}

var (
	sun = parseIcon(`
		.......#........
		...#...#...#....
		....#.....#.....
		......ooo.......
		.....ooooo......
		.#..ooooooo..#..
		##..ooooooo..##.
		.#..ooooooo..#..
		.....ooooo......
		......ooo.......
		....#.....#.....
		...#...#...#....
		.......#........
		................
		................
		................`)

	moon = parseIcon(`
		................
		.....oooo.......
		...ooo..........
		..ooo...........
		.ooo............
		.ooo............
		.ooo............
		.oooo...........
		.ooooo......oo..
		..oooooooooooo..
		...oooooooooo...
		.....oooooo.....
		................
		................
		................
		................`)

	fewClouds = parseIcon(`
		..........#.....
		.......#..#..#..
		.........ooo....
		..#.....ooooo.#.
		.......+++ooo...
		.....+++++++o...
		...+++++++++++..
		..+++++++++++++.
		.++++++++++++++.
		.++++++++++++++.
		..++++++++++++..
		................
		................
		................
		................
		................`)

	cloud = parseIcon(`
		................
		................
		......++++......
		....++++++++....
		...++++++++++...
		.++++++++++++++.
		++++++++++++++++
		++++++++++++++++
		++++++++++++++++
		.++++++++++++++.
		................
		................
		................
		................
		................
		................`)

	brokenClouds = parseIcon(`
		.........----...
		.......--------.
		......---------.
		....++++--------
		...++++++++-----
		.++++++++++++---
		++++++++++++++..
		++++++++++++++..
		++++++++++++++..
		.++++++++++++...
		................
		................
		................
		................
		................
		................`)

	rain = parseIcon(`
		................
		......++++......
		....++++++++....
		...++++++++++...
		.++++++++++++++.
		++++++++++++++++
		++++++++++++++++
		.++++++++++++++.
		................
		...#...#...#....
		..#...#...#.....
		................
		....#...#...#...
		...#...#...#....
		................
		................`)

	thunder = parseIcon(`
		................
		......----......
		....--------....
		...----------...
		.--------------.
		----------------
		----------------
		.------##------.
		.......#........
		......##........
		.....######.....
		.........#......
		........#.......
		.......#........
		................
		................`)

	snow = parseIcon(`
		................
		......++++......
		....++++++++....
		...++++++++++...
		.++++++++++++++.
		++++++++++++++++
		.++++++++++++++.
		................
		..#....#....#...
		.###..###..###..
		..#....#....#...
		................
		....#....#......
		...###..###.....
		....#....#......
		................`)

	mist = parseIcon(`
		................
		................
		................
		.-----------....
		................
		...-----------..
		................
		.-----------....
		................
		...-----------..
		................
		.-----------....
		................
		................
		................
		................`)
)

// icons maps OpenWeatherMap icon codes to bitmaps.
var icons = map[string]*Icon{
	"01d": sun,
	"01n": moon,
	"02d": fewClouds,
	"02n": fewClouds,
	"03d": cloud,
	"03n": cloud,
	"04d": brokenClouds,
	"04n": brokenClouds,
	"09d": rain,
	"09n": rain,
	"10d": rain,
	"10n": rain,
	"11d": thunder,
	"11n": thunder,
	"13d": snow,
	"13n": snow,
	"50d": mist,
	"50n": mist,
}

// Lookup returns the icon for an OpenWeatherMap code such as "10d". Empty
// and unknown codes report false.
func Lookup(code string) (*Icon, bool) {
	ic, ok := icons[code]
	return ic, ok
}
