package kicad

var smdPadLayers = map[int][]string{
	1:  {"F.Cu", "F.Paste", "F.Mask"},
	2:  {"B.Cu", "B.Paste", "B.Mask"},
	3:  {"F.SilkS"},
	11: {"*.Cu", "*.Paste", "*.Mask"},
	13: {"F.Fab"},
	15: {"Dwgs.User"},
}

var thtPadLayers = map[int][]string{
	1:  {"F.Cu", "F.Mask"},
	2:  {"B.Cu", "B.Mask"},
	3:  {"F.SilkS"},
	11: {"*.Cu", "*.Mask"},
	13: {"F.Fab"},
	15: {"Dwgs.User"},
}

var drawingLayers = map[int]string{
	1:   "F.Cu",
	2:   "B.Cu",
	3:   "F.SilkS",
	4:   "B.SilkS",
	5:   "F.Paste",
	6:   "B.Paste",
	7:   "F.Mask",
	8:   "B.Mask",
	10:  "Edge.Cuts",
	11:  "Edge.Cuts",
	12:  "Cmts.User",
	13:  "F.Fab",
	14:  "B.Fab",
	15:  "Dwgs.User",
	101: "F.Fab",
}

var padShapes = map[string]string{
	"ELLIPSE": "circle",
	"RECT":    "rect",
	"OVAL":    "oval",
	"POLYGON": "custom",
}

// PadLayers returns the layer set for a pad on the given EasyEDA layer.
// Unknown layers fall back to the front copper set of the pad class.
func PadLayers(layerID int, throughHole bool) []string {
	table := smdPadLayers
	if throughHole {
		table = thtPadLayers
	}
	if l, ok := table[layerID]; ok {
		return l
	}
	if throughHole {
		return []string{"*.Cu", "*.Mask"}
	}
	return table[1]
}

// Layer maps an EasyEDA drawing layer id. Unknown ids land on F.Fab.
func Layer(layerID int) string {
	if l, ok := drawingLayers[layerID]; ok {
		return l
	}
	return "F.Fab"
}

// PadShape maps an EasyEDA pad shape. Unknown shapes become rect.
func PadShape(shape string) string {
	if s, ok := padShapes[shape]; ok {
		return s
	}
	return "rect"
}

// PinType maps an EasyEDA electric type code.
func PinType(code int) string {
	switch code {
	case 1:
		return PinTypeInput
	case 2:
		return PinTypeOutput
	case 3:
		return PinTypeBidirectional
	case 4:
		return PinTypePowerIn
	default:
		return PinTypeUnspecified
	}
}
