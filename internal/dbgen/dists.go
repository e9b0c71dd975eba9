package dbgen

// Value distributions for the generated columns. Nation and region rows are
// fixed; everything else is drawn uniformly from these lists.

var regions = [regionCount]string{
	"AFRICA", "AMERICA", "ASIA", "EUROPE", "MIDDLE EAST",
}

type nationDef struct {
	name   string
	region int64
}

var nations = [nationCount]nationDef{
	{"ALGERIA", 0}, {"ARGENTINA", 1}, {"BRAZIL", 1}, {"CANADA", 1},
	{"EGYPT", 4}, {"ETHIOPIA", 0}, {"FRANCE", 3}, {"GERMANY", 3},
	{"INDIA", 2}, {"INDONESIA", 2}, {"IRAN", 4}, {"IRAQ", 4},
	{"JAPAN", 2}, {"JORDAN", 4}, {"KENYA", 0}, {"MOROCCO", 0},
	{"MOZAMBIQUE", 0}, {"PERU", 1}, {"CHINA", 2}, {"ROMANIA", 3},
	{"SAUDI ARABIA", 4}, {"VIETNAM", 2}, {"RUSSIA", 3},
	{"UNITED KINGDOM", 3}, {"UNITED STATES", 1},
}

var segments = []string{
	"AUTOMOBILE", "BUILDING", "FURNITURE", "MACHINERY", "HOUSEHOLD",
}

var priorities = []string{
	"1-URGENT", "2-HIGH", "3-MEDIUM", "4-NOT SPECIFIED", "5-LOW",
}

var instructions = []string{
	"DELIVER IN PERSON", "COLLECT COD", "NONE", "TAKE BACK RETURN",
}

var shipModes = []string{
	"REG AIR", "AIR", "RAIL", "SHIP", "TRUCK", "MAIL", "FOB",
}

var typeSyl1 = []string{
	"STANDARD", "SMALL", "MEDIUM", "LARGE", "ECONOMY", "PROMO",
}

var typeSyl2 = []string{
	"ANODIZED", "BURNISHED", "PLATED", "POLISHED", "BRUSHED",
}

var typeSyl3 = []string{
	"TIN", "NICKEL", "BRASS", "STEEL", "COPPER",
}

var containerSyl1 = []string{
	"SM", "MED", "LG", "JUMBO", "WRAP",
}

var containerSyl2 = []string{
	"CASE", "BOX", "BAG", "JAR", "PKG", "PACK", "CAN", "DRUM",
}

// colors feed part names: five distinct picks joined by spaces.
var colors = []string{
	"almond", "antique", "aquamarine", "azure", "beige", "bisque", "black",
	"blanched", "blue", "blush", "brown", "burlywood", "burnished", "chartreuse",
	"chiffon", "chocolate", "coral", "cornflower", "cornsilk", "cream", "cyan",
	"dark", "deep", "dim", "dodger", "drab", "firebrick", "floral", "forest",
	"frosted", "gainsboro", "ghost", "goldenrod", "green", "grey", "honeydew",
	"hot", "indian", "ivory", "khaki", "lace", "lavender", "lawn", "lemon",
	"light", "lime", "linen", "magenta", "maroon", "medium", "metallic",
	"midnight", "mint", "misty", "moccasin", "navajo", "navy", "olive", "orange",
	"orchid", "pale", "papaya", "peach", "peru", "pink", "plum", "powder",
	"puff", "purple", "red", "rose", "rosy", "royal", "saddle", "salmon",
	"sandy", "seashell", "sienna", "sky", "slate", "smoke", "snow", "spring",
	"steel", "tan", "thistle", "tomato", "turquoise", "violet", "wheat",
	"white", "yellow",
}

// Comment text is built from a small vocabulary drawn per column stream.
var commentWords = []string{
	"furiously", "slyly", "carefully", "quickly", "blithely", "daringly",
	"fluffily", "ruthlessly", "thinly", "final", "ironic", "even", "regular",
	"express", "bold", "silent", "unusual", "special", "pending", "idle",
	"accounts", "deposits", "packages", "requests", "instructions", "foxes",
	"pinto", "beans", "theodolites", "dependencies", "excuses", "platelets",
	"asymptotes", "courts", "dolphins", "multipliers", "sauternes", "warthogs",
	"ideas", "realms", "sleep", "wake", "haggle", "nag", "use", "boost",
	"affix", "detect", "integrate", "cajole", "doze", "engage", "maintain",
	"snooze", "about", "above", "according", "across", "against", "along",
	"among", "around", "at", "atop", "behind", "beneath", "beside", "besides",
	"between", "beyond", "by", "despite", "during", "the",
}

// addressAlphabet feeds the v-string address and comment filler characters.
const addressAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz" +
	"ABCDEFGHIJKLMNOPQRSTUVWXYZ,. "

func pick(stream int, list []string) string {
	return list[rnd(stream, 0, int64(len(list)-1))]
}
