package fallback

// Fragment templates, keyed "<genre>/<part>". Each genre contributes an
// opening, a rising section, a climax and a resolution; filler paragraphs
// are genre-neutral and carry the word count the rest of the way. The
// {{pick}} slots draw from the per-story PRNG, so one seed always renders
// one story.
const fragmentSource = `
{{define "fantasy/opening"}}In the kingdom beyond the {{pick "silver mountains|||mist-veiled hills|||endless birchwood"}}, where the old songs still remembered {{.Subject}}, there lived {{.Hero}}. The villagers said the {{pick "stars|||rivers|||standing stones"}} themselves had marked the year of arrival, and that nothing in the valley had been entirely ordinary since. {{.Hero}} did not believe in marked years. Not yet.{{end}}
{{define "fantasy/rising"}}The first sign came on a morning of {{pick "low fog|||pale frost|||warm rain"}}. A messenger in a travel-stained cloak brought word of {{.Subject}}, and with it a request no one in living memory had dared to make aloud. {{.Hero}} packed what little the journey allowed, took the {{pick "north road|||ferry across the black water|||goat path over the ridge"}}, and left before the bells rang. Magic, the old keeper had warned, answers those who walk toward it.{{end}}
{{define "fantasy/climax"}}At the heart of the {{pick "ruined tower|||hollow hill|||drowned library"}}, everything that had been whispered about {{.Subject}} proved smaller than the truth. The air went taut as a bowstring. {{.Hero}} spoke the words that had waited all this time, and the world listened with a patience that was almost cruel, and then it changed.{{end}}
{{define "fantasy/resolution"}}Afterward the valley kept its seasons as before, though travelers sometimes noticed that the shadows there leaned kindly. {{.Hero}} returned to small work and long evenings, telling the story of {{.Subject}} only when asked twice. Some endings are doors. This one, the old keeper said, was a window left open.{{end}}

{{define "adventure/opening"}}The expedition notice was pinned to the harbor board between a tide table and a reward poster: wanted, a crew willing to chase {{.Subject}} past the edge of the charts. {{.Hero}} read it twice, felt the old itch return, and signed in ink that hadn't fully dried before the wind turned favorable.{{end}}
{{define "adventure/rising"}}They crossed {{pick "the straits under storm|||the dune sea at night|||the river gorge by rope bridge"}} with supplies thinning and maps disagreeing. Every camp brought a new version of the legend of {{.Subject}}, and every version moved the goal a little farther. {{.Hero}} kept the compass dry and the complaints shorter than the daylight.{{end}}
{{define "adventure/climax"}}The final approach was a ledge no wider than a doorstep, with the wind auditioning to be a villain. There, exactly where the oldest map had shrugged, lay {{.Subject}}. {{.Hero}} went first, because going first was the whole point of having come.{{end}}
{{define "adventure/resolution"}}The return took longer and mattered less; returns always do. In the harbor tavern the story of {{.Subject}} grew a few sizes with each telling, and {{.Hero}} let it, paying for the last round and already reading the next notice on the board.{{end}}

{{define "mystery/opening"}}It began, as these things do, with something missing. Not stolen, the constable insisted. Missing. The matter of {{.Subject}} had been filed, unfiled, and quietly refiled before anyone thought to consult {{.Hero}}, who was known for noticing what rooms tried to hide.{{end}}
{{define "mystery/rising"}}The witnesses agreed on everything except the facts. A lamp lit at the wrong hour, a door locked from the inside, and through every account ran the thread of {{.Subject}}, knotted neatly where it should have frayed. {{.Hero}} filled a notebook, then a second, and began asking the question nobody had wanted.{{end}}
{{define "mystery/climax"}}The answer had been in plain sight since the first evening, wearing the room's best disguise: familiarity. When {{.Hero}} said it aloud, in the parlor with everyone assembled, the silence admitted more than the confession that followed. {{.Subject}} had never been missing. It had been waiting.{{end}}
{{define "mystery/resolution"}}The paperwork, as always, was the true epilogue. The constable got the credit and minded terribly; {{.Hero}} got the quiet and minded not at all. On the last page of the second notebook, under the heading {{.Subject}}, a single line: case closed, kettle on.{{end}}

{{define "romance/opening"}}They met because of {{.Subject}}, which is to say they met by accident twice and on purpose ever after. {{.Hero}} would later claim to remember the weather, the music, and the exact shade of the evening. All three claims were wrong, and nobody ever corrected them.{{end}}
{{define "romance/rising"}}Letters turned into {{pick "long walks|||borrowed books|||shared umbrellas"}}, and {{.Subject}} became their private shorthand for everything too large to say plainly. There was a misunderstanding, because there is always a misunderstanding, and for three days the city seemed rearranged by it.{{end}}
{{define "romance/climax"}}In the end it took one honest sentence, delivered breathless at a doorstep at an indefensible hour. {{.Hero}} said the thing about {{.Subject}} that had been true from the beginning, and the door, after a measured and merciless pause, opened.{{end}}
{{define "romance/resolution"}}Years later they still argued gently about who had been first to know. The story of {{.Subject}} was retold every anniversary, embellished in turns, accurate only in the way that mattered. {{.Hero}} kept the umbrella. It never rained quite the same again.{{end}}

{{define "scifi/opening"}}The anomaly designated {{.Subject}} appeared in the survey data on a Tuesday, which the station logs recorded with their usual indifference. {{.Hero}} ran the numbers three times, then once more by hand, and filed the report that would end up taught in academies under the heading of famous understatements.{{end}}
{{define "scifi/rising"}}Command sent protocols; the protocols assumed a universe politer than the one available. As {{.Subject}} drifted inward past the outer markers, instruments began returning readings that were less measurements than opinions. {{.Hero}} rationed sleep, rerouted power from the {{pick "hydroponics bay|||long-range array|||gravity ring"}}, and kept a private log in actual ink.{{end}}
{{define "scifi/climax"}}Contact, when it came, was not a broadcast but a correction: three constants in the station's physics libraries, gently amended. In the stunned hush of the operations deck, {{.Hero}} understood that {{.Subject}} was not arriving at all. It had always been here, waiting for instruments honest enough to see it.{{end}}
{{define "scifi/resolution"}}The station was renamed, the constants were footnoted, and the academies queued up to disagree about meaning. {{.Hero}} retired the ink log on the last shift, writing only that {{.Subject}} had made the universe larger and the coffee colder, and that both facts were acceptable.{{end}}

{{define "horror/opening"}}The house had been empty for eleven years, which the town considered a fact and the house considered an insult. {{.Hero}} arrived with two suitcases and a rational explanation for everything, including the matter of {{.Subject}}, which the neighbors mentioned only in daylight.{{end}}
{{define "horror/rising"}}It started politely: a door ajar, a clock running backward for exactly one hour, the smell of {{pick "river water|||candle smoke|||turned earth"}} in closed rooms. {{.Hero}} made lists, then stopped making lists after finding an entry in the notebook written in a hand that was almost, but not quite, familiar. The entry was about {{.Subject}}. It was dated tomorrow.{{end}}
{{define "horror/climax"}}On the last night the house stopped pretending. Every lamp failed at once, and in the long dark of the stairwell {{.Hero}} finally understood {{.Subject}}, understood it completely, in the way one understands deep water by sinking. Something spoke, using borrowed breath. It said: stay.{{end}}
{{define "horror/resolution"}}The listing reappeared in spring, priced to sell. The agent's photographs show bright rooms and no furniture, except in one frame, in the hall mirror, where a figure very like {{.Hero}} is standing quite still. The town does not discuss {{.Subject}} anymore. The house considers this progress.{{end}}

{{define "comedy/opening"}}Everyone agreed the situation with {{.Subject}} had gotten out of hand; the disagreement was about whose hand it had originally been in. {{.Hero}}, who had once assembled furniture without the instructions and still carried the emotional scars, was voted spokesperson by everyone who took one prudent step backward.{{end}}
{{define "comedy/rising"}}The plan was simple, which should have been the first warning. Committees formed, merged, and feuded. The {{pick "mayor|||landlord|||head librarian"}} issued a statement that clarified nothing with tremendous confidence. Through it all, {{.Subject}} sat in the middle of town like a punchline waiting for its setup, and {{.Hero}} tried separately heroic and sensible, discovering the two rarely overlap.{{end}}
{{define "comedy/climax"}}Disaster arrived punctually and through the one door nobody had thought to guard. In the ensuing chaos, which involved {{pick "a ladder, two geese, and a tuba|||three umbrellas and a wedding cake|||the fire brigade and a bathtub"}}, {{.Hero}} solved the problem of {{.Subject}} entirely by accident, which was, everyone agreed afterward, the only method that had not yet been tried.{{end}}
{{define "comedy/resolution"}}There was a ceremony, of course. The plaque misspelled two names, including the town's. {{.Hero}} gave a speech that was mostly thanks and partly apology, and {{.Subject}} was never spoken of again, except constantly, at every gathering, forever.{{end}}

{{define "drama/opening"}}The call came on an ordinary evening, the kind that seems designed so life can change against a plain background. For years {{.Hero}} had kept the matter of {{.Subject}} folded away like a letter too important to reread. Now the folding was coming undone.{{end}}
{{define "drama/rising"}}Going back meant streets that remembered and people who remembered differently. Conversations circled {{.Subject}} the way a tongue circles a missing tooth. {{.Hero}} had rehearsed honesty for the whole journey and found, on arrival, that rehearsal is just another kind of avoidance.{{end}}
{{define "drama/climax"}}It finally surfaced at the kitchen table, of all places, between the washing-up and the kettle. The truth about {{.Subject}}, spoken plainly for the first time, did not thunder. It simply rearranged everything, the way one moved photograph changes a whole wall. {{.Hero}} let the silence finish the sentence.{{end}}
{{define "drama/resolution"}}Some repairs hold because they are imperfect, visible, honest about the break. In the months after, {{.Hero}} and the others built one of those. {{.Subject}} stopped being a wound and became, slowly, a place the story could rest. The kettle, as always, had the last word.{{end}}

{{define "fable/opening"}}Long ago, when animals still held council and rivers kept their promises, word spread through the wood about {{.Subject}}. The young ones asked loudly, the old ones answered slowly, and {{.Hero}} listened to both, which is the beginning of every wise thing.{{end}}
{{define "fable/rising"}}{{.Hero}} set out to see the truth of it, and met three travelers on the way: one {{pick "proud|||hasty|||greedy"}}, one {{pick "timid|||idle|||boastful"}}, and one kind. Each had an opinion about {{.Subject}}, and each opinion said more about the traveler than the thing itself, as opinions mostly do.{{end}}
{{define "fable/climax"}}At the clearing where the road became a choice, the proud turned back, the timid stood still, and the kind walked on with {{.Hero}}. There {{.Subject}} was revealed, plain as morning, to those patient enough to look at it without wanting it.{{end}}
{{define "fable/resolution"}}{{.Hero}} carried the lesson home, and the council carved it on the old oak for the young ones to misread until they were ready: what you seek in {{.Subject}}, you bring to it. And the wood kept the story, as the wood keeps everything worth keeping.{{end}}

{{define "filler/0"}}The road between those days was made of small hours. {{.Hero}} learned the weight of waiting, learned which worries were {{pick "weather|||noise|||shadows"}} and which were compass needles, and learned that {{.Subject}} looked different at dawn than it had at midnight. Progress rarely announced itself; it accumulated, coin by coin, in a purse nobody counts until it is suddenly heavy.{{end}}
{{define "filler/1"}}There were companions for part of the way, as there usually are: a {{pick "talkative tinker|||retired soldier|||sharp-eyed ferryman"}} with theories about {{.Subject}}, and a quiet one whose silence was better company than most conversation. They shared {{pick "bread|||a fire|||bad directions"}} and better stories, and parted at the crossroads with the particular fondness of people who will never meet again.{{end}}
{{define "filler/2"}}Setbacks arrived on schedule. One plan failed by an inch, another by a mile, and the difference taught {{.Hero}} more than success had ever offered. Each failure left a small tool behind: patience once, stubbornness twice, and a joke about {{.Subject}} that was only funny much later.{{end}}
{{define "filler/3"}}The {{pick "weather|||season|||light"}} turned, the way it does in the middle of every true story, and the turning changed the terms. What had been a matter of maps became a matter of nerve. {{.Hero}} slept badly, ate worse, and woke each morning slightly more certain that {{.Subject}} was nearer, the way one feels a coastline before seeing it.{{end}}
{{define "filler/4"}}In a {{pick "village|||waystation|||market town"}} along the route, an old keeper of records told a version of the tale that contradicted all the others. {{.Hero}} wrote it down anyway. Contradictions, the keeper said, are where the truth keeps its spare keys, and anyone serious about {{.Subject}} had better collect the whole ring.{{end}}
{{define "filler/5"}}There was an evening of rest that deserves its own telling: a fire that behaved, food that was almost famous, and the rare kind of talk that wanders without getting lost. For one night {{.Subject}} was allowed to be merely a story, and {{.Hero}} was allowed to be merely tired, and both were better for it in the morning.{{end}}
{{define "filler/6"}}Doubt traveled with them from the start, an unpaying passenger. Some days it whispered sensible things in an unkind voice; other days, unkind things in a sensible one. {{.Hero}} never managed to silence it and eventually stopped trying, finding that doubt, given a seat and ignored, makes a tolerable companion on the way to {{.Subject}}.{{end}}
{{define "filler/7"}}Small kindnesses kept the ledger balanced: a gate left unlocked, a {{pick "lantern|||map corner|||dry pair of boots"}} given without ceremony, directions offered before being asked. None of it was about {{.Subject}}, and all of it was, in the way that every road is paved by people who will never walk its whole length.{{end}}
`

// enhanceBlocks append genre texture to a prompt before it is handed to an
// image or text model.
var enhanceBlocks = map[string]string{
	"fantasy":   "Render this in a high-fantasy register: ancient forests, weathered stone, soft magical glow, mythic scale. Mood: wonder edged with peril.",
	"adventure": "Render this in an adventure register: open horizons, dramatic terrain, motion and wind, worn travel gear. Mood: bold and restless.",
	"mystery":   "Render this in a mystery register: lamplight and long shadows, fog, half-open doors, details that reward a second look. Mood: quiet suspicion.",
	"romance":   "Render this in a romantic register: golden hour light, intimate framing, rain-washed streets, small meaningful objects. Mood: tender and hopeful.",
	"scifi":     "Render this in a science-fiction register: clean geometry, starfields, instrument glow, immense scale against small figures. Mood: awe and isolation.",
	"horror":    "Render this in a horror register: underexposed interiors, wrong angles, implied presence just out of frame. Mood: dread that accumulates.",
	"comedy":    "Render this in a comedic register: bright saturated color, exaggerated poses, visual chaos arranged with care. Mood: warm absurdity.",
	"drama":     "Render this in a dramatic register: muted palette, natural light, honest faces, domestic spaces that carry history. Mood: restrained emotion.",
	"fable":     "Render this in a fable register: storybook flatness, friendly animals, oversized nature, a clearing where lessons happen. Mood: gentle wisdom.",
}

// styleBlocks describe the five supported illustration styles.
var styleBlocks = map[string]string{
	"watercolor":   "Medium: watercolor on rough paper, soft edges, granulating washes, deliberate white space.",
	"digital-art":  "Medium: polished digital painting, crisp rim lighting, layered depth, rich gradients.",
	"sketch":       "Medium: graphite and ink sketch, visible construction lines, crosshatched shadow, paper tooth.",
	"cartoon":      "Medium: bold cartoon linework, flat cel shading, expressive silhouettes, simple backgrounds.",
	"oil-painting": "Medium: classical oil painting, impasto highlights, deep glazing, canvas texture.",
}

// palettes feed placeholder images; the scene index selects a row.
// Background color first, then accents.
var palettes = [][]string{
	{"#1b263b", "#415a77", "#778da9", "#e0e1dd"},
	{"#2d3a2e", "#5a7d5a", "#a3b18a", "#dad7cd"},
	{"#3d2c4d", "#7b5e8d", "#b8a1cf", "#efe6f7"},
	{"#4a2e2a", "#8d5b4c", "#c98f70", "#f2e3d5"},
	{"#14343f", "#2e6f7e", "#6fb3b8", "#def2f1"},
	{"#3f3121", "#7a6540", "#bfa36f", "#f1e4c7"},
}

// heroes are picked once per story so the cast stays stable across
// paragraphs.
var heroes = []string{
	"Wren", "Tobias", "Mira", "old Aldous", "young Pemberton", "Sable",
	"Ilsa", "Corin", "the twins Juno and Jem", "Marisol", "Fenwick", "Ode",
}
