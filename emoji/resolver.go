// Package emoji maps mood identifiers to display glyphs. The glyph table
// is loaded once, on first use, behind a one-shot initialization guard so
// concurrent callers never race the setup.
package emoji

import "sync"

// glyphs is the mood taxonomy: emoji-mart style identifiers to native
// glyphs. Unknown ids resolve to nothing; callers fall back to the id.
var glyphs = map[string]string{
	"grinning":               "😀",
	"smiley":                 "😃",
	"smile":                  "😄",
	"laughing":               "😆",
	"sweat_smile":            "😅",
	"joy":                    "😂",
	"rofl":                   "🤣",
	"slightly_smiling_face":  "🙂",
	"wink":                   "😉",
	"blush":                  "😊",
	"innocent":               "😇",
	"heart_eyes":             "😍",
	"star-struck":            "🤩",
	"kissing_heart":          "😘",
	"relaxed":                "☺️",
	"yum":                    "😋",
	"stuck_out_tongue":       "😛",
	"hugging_face":           "🤗",
	"thinking_face":          "🤔",
	"zipper_mouth_face":      "🤐",
	"neutral_face":           "😐",
	"expressionless":         "😑",
	"no_mouth":               "😶",
	"smirk":                  "😏",
	"unamused":               "😒",
	"roll_eyes":              "🙄",
	"grimacing":              "😬",
	"relieved":               "😌",
	"pensive":                "😔",
	"sleepy":                 "😪",
	"sleeping":               "😴",
	"mask":                   "😷",
	"face_with_thermometer":  "🤒",
	"nauseated_face":         "🤢",
	"sneezing_face":          "🤧",
	"hot_face":               "🥵",
	"cold_face":              "🥶",
	"woozy_face":             "🥴",
	"dizzy_face":             "😵",
	"exploding_head":         "🤯",
	"partying_face":          "🥳",
	"sunglasses":             "😎",
	"nerd_face":              "🤓",
	"confused":               "😕",
	"worried":                "😟",
	"slightly_frowning_face": "🙁",
	"frowning_face":          "☹️",
	"open_mouth":             "😮",
	"astonished":             "😲",
	"flushed":                "😳",
	"pleading_face":          "🥺",
	"frowning":               "😦",
	"anguished":              "😧",
	"fearful":                "😨",
	"cold_sweat":             "😰",
	"disappointed_relieved":  "😥",
	"cry":                    "😢",
	"sob":                    "😭",
	"scream":                 "😱",
	"confounded":             "😖",
	"persevere":              "😣",
	"disappointed":           "😞",
	"sweat":                  "😓",
	"weary":                  "😩",
	"tired_face":             "😫",
	"yawning_face":           "🥱",
	"triumph":                "😤",
	"rage":                   "😡",
	"angry":                  "😠",
	"face_with_symbols_on_mouth": "🤬",
}

// Resolver resolves mood ids to glyphs. The zero value is ready to use;
// initialization happens lazily on the first call.
type Resolver struct {
	once  sync.Once
	table map[string]string
}

func NewResolver() *Resolver {
	return &Resolver{}
}

// Init loads the glyph table. Safe to call concurrently; only the first
// call does work. Resolve calls it implicitly.
func (r *Resolver) Init() {
	r.once.Do(func() {
		table := make(map[string]string, len(glyphs))
		for id, glyph := range glyphs {
			table[id] = glyph
		}
		r.table = table
	})
}

// Resolve returns the glyph for a mood id. ok is false for unknown ids.
func (r *Resolver) Resolve(moodID string) (string, bool) {
	r.Init()
	glyph, ok := r.table[moodID]
	return glyph, ok
}
