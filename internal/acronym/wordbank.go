package acronym

// Static word bank for bot answers when the corpus has no match. Words are
// lowercase; a bot sentence is one random pick per acronym letter.
var wordBank = map[rune][]string{
	'A': {"angry", "awkward", "ancient", "adorable", "atomic"},
	'B': {"bold", "bananas", "bizarre", "brave", "bouncy"},
	'C': {"curious", "cranky", "cosmic", "clever", "clumsy"},
	'D': {"dizzy", "daring", "dramatic", "dusty", "dapper"},
	'E': {"eager", "electric", "elegant", "enormous", "excited"},
	'F': {"fuzzy", "fearless", "fancy", "frantic", "festive"},
	'G': {"giant", "grumpy", "glorious", "gentle", "greedy"},
	'H': {"happy", "hungry", "heroic", "hasty", "humble"},
	'I': {"icy", "invisible", "itchy", "impatient", "infamous"},
	'J': {"jolly", "jumpy", "jealous", "jaded", "jubilant"},
	'K': {"kind", "keen", "knobbly", "kingly", "kooky"},
	'L': {"lazy", "loud", "lucky", "lonely", "lively"},
	'M': {"mighty", "mysterious", "merry", "moody", "magnetic"},
	'N': {"nervous", "noble", "nimble", "nosy", "noisy"},
	'O': {"odd", "orange", "outrageous", "obedient", "ominous"},
	'P': {"purple", "proud", "peculiar", "playful", "polite"},
	'Q': {"quiet", "quick", "quirky", "quaint", "queasy"},
	'R': {"rowdy", "rusty", "radiant", "reckless", "royal"},
	'S': {"sleepy", "sneaky", "shiny", "stubborn", "silly"},
	'T': {"tiny", "ticklish", "tremendous", "timid", "tangled"},
	'U': {"unusual", "upbeat", "uneasy", "unlucky", "urgent"},
	'V': {"vivid", "vast", "velvet", "vain", "valiant"},
	'W': {"wobbly", "wild", "witty", "weary", "wicked"},
	'X': {"xenial", "xeric", "xanthic"},
	'Y': {"young", "yawning", "yellow", "yearning"},
	'Z': {"zany", "zealous", "zesty", "zigzag"},
}
