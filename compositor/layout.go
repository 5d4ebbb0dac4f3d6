package compositor

import (
	"image"

	"github.com/flavioheleno/wxpanel/assets"
)

// Fonts names the faces used by each text role.
type Fonts struct {
	Header assets.FontID // "WEATHER"
	Body   assets.FontID // city, sunrise/sunset, cell values, seconds
	Big    assets.FontID // temperature
	Time   assets.FontID // HH:MM
	Label  assets.FontID // captions and cell labels
	Strip  assets.FontID // scrolling message
}

// IDs returns every font id in f.
func (f Fonts) IDs() []assets.FontID {
	return []assets.FontID{f.Header, f.Body, f.Big, f.Time, f.Label, f.Strip}
}

// DefaultFonts returns the text roles at their usual sizes in font name.
func DefaultFonts(name string) Fonts {
	return Fonts{
		Header: assets.FontID{Name: name, Size: 16},
		Body:   assets.FontID{Name: name, Size: 14},
		Big:    assets.FontID{Name: name, Size: 36},
		Time:   assets.FontID{Name: name, Size: 20},
		Label:  assets.FontID{Name: name, Size: 9},
		Strip:  assets.FontID{Name: name, Size: 11},
	}
}

// Layout places every element of the panel. Coordinates are in frame
// pixels; text positions are top-left unless noted.
type Layout struct {
	Size image.Point

	// Left panel.
	VDivider    [2]image.Point
	HDivider    [2]image.Point
	Header      image.Point
	Tag         [2]image.Point // "MICRO", "STATION"
	CityLabel   image.Point
	City        image.Point
	Temperature image.Point // middle-centre
	Unit        image.Point // Celsius glyph
	UnitAlt     image.Point // Fahrenheit glyph
	Degree      image.Point // degree circle centre
	DegreeR     int
	Clock       image.Point
	Seconds     image.Rectangle // highlighted box, text centred inside
	SecondsR    int
	SecondsCap  image.Point

	// Right panel.
	SunriseLabel image.Point
	SunsetLabel  image.Point
	Sunrise      image.Point
	Sunset       image.Point
	Icon         image.Point
	Cells        image.Point // top-left of the first cell
	CellSize     image.Point
	CellPitch    image.Point // offset between columns (X) and rows (Y)
	CellR        int
	CellLabelY   int // label centre, relative to the cell top
	CellValueY   int // value centre, relative to the cell top
	StripBack    image.Rectangle
	StripBackR   int
	Strip        image.Rectangle // where the strip buffer lands
	StripTextY   int             // text top inside the strip buffer
	Caption      image.Point
	Counter      image.Point

	Fonts Fonts
}

// DefaultLayout returns the 320×170 panel layout.
func DefaultLayout(font string) Layout {
	return Layout{
		Size: image.Pt(320, 170),

		VDivider:    [2]image.Point{{138, 10}, {138, 164}},
		HDivider:    [2]image.Point{{100, 108}, {134, 108}},
		Header:      image.Pt(6, 10),
		Tag:         [2]image.Point{{88, 10}, {88, 20}},
		CityLabel:   image.Pt(6, 110),
		City:        image.Pt(48, 110),
		Temperature: image.Pt(50, 80),
		Unit:        image.Pt(112, 55),
		UnitAlt:     image.Pt(112, 49),
		Degree:      image.Pt(103, 50),
		DegreeR:     2,
		Clock:       image.Pt(6, 132),
		Seconds:     image.Rect(90, 132, 132, 154),
		SecondsR:    2,
		SecondsCap:  image.Pt(91, 157),

		SunriseLabel: image.Pt(144, 10),
		SunsetLabel:  image.Pt(144, 28),
		Sunrise:      image.Pt(210, 12),
		Sunset:       image.Pt(210, 30),
		Icon:         image.Pt(278, 12),
		Cells:        image.Pt(144, 53),
		CellSize:     image.Pt(54, 32),
		CellPitch:    image.Pt(60, 40),
		CellR:        3,
		CellLabelY:   6,
		CellValueY:   23,
		StripBack:    image.Rect(144, 148, 318, 164),
		StripBackR:   2,
		Strip:        image.Rect(148, 149, 318, 163),
		StripTextY:   0,
		Caption:      image.Pt(145, 136),
		Counter:      image.Pt(310, 136),

		Fonts: DefaultFonts(font),
	}
}
