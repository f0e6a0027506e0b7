package translate

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// catalog maps each language to its translations of en-US formats.
var catalog = map[language.Tag]map[string]string{
	language.German: {
		"no such unit":                      "keine solche Einheit",
		"emulator closed":                   "Emulator geschlossen",
		"recompiler shut down":              "Recompiler beendet",
		"no compiled block":                 "kein übersetzter Block",
		"code buffer full":                  "Codepuffer voll",
		"arena allocation failed":           "Arena konnte nicht angelegt werden",
		"not a vector unit frame":           "kein Vektoreinheit-Speicherstand",
		"frame tag mismatch":                "Kennung des Speicherstands passt nicht",
		"kick queue depth must be positive": "Tiefe der Kick-Warteschlange muss positiv sein",
		"wrong type":                        "falscher Typ",
		"out of range":                      "außerhalb des Bereichs",
		"unknown setting":                   "unbekannte Einstellung",
		"config %v: %v":                     "Einstellung %v: %v",
		"unknown flag mode %q":              "unbekannter Flag-Modus %q",
		"unknown hack %q":                   "unbekannte Ausnahme %q",
		"operand count":                     "falsche Anzahl Operanden",
		"lane mask invalid":                 "ungültige Spurmaske",
		"'%v' is not an instruction":        "'%v' ist kein Befehl",
		"'%v' is not a number":              "'%v' ist keine Zahl",
		"label %v missing":                  "Marke %v fehlt",
		"line %d '%v' %v":                   "Zeile %d '%v' %v",
		"vu%d: block 0x%04x: %v":            "vu%d: Block 0x%04x: %v",
		"vu%d: 0x%04x: %v":                  "vu%d: 0x%04x: %v",
		"vu%d: 0x%04x: line %d %v":          "vu%d: 0x%04x: Zeile %d %v",
	},
}

// register adds every translation to the default message catalog.
func register(catalog map[language.Tag]map[string]string) (err error) {
	for tag, messages := range catalog {
		for key, text := range messages {
			err = message.SetString(tag, key, text)
			if err != nil {
				return
			}
		}
	}
	return
}
