package respond

import "github.com/WEAV04/willy/internal/model"

// Base-message pools. Entries within a pool are equivalent in meaning; the
// generator picks one at random so repeated turns don't sound canned.

var crisisMessages = map[model.CrisisCategory][]string{
	model.CrisisSuicidalIdeation: {
		"Siento mucho que estés pasando por esto. No estás solo, y lo que sientes importa. ¿Puedo quedarme contigo un momento mientras hablamos?",
		"Gracias por decírmelo. Lo que sientes es muy serio y mereces apoyo de verdad. Estoy aquí contigo ahora mismo.",
		"Lo que me cuentas me importa muchísimo. No tienes que cargar con esto en silencio; hablemos, paso a paso.",
	},
	model.CrisisSelfHarmRisk: {
		"Gracias por confiar en mí algo tan difícil. No quiero que te hagas daño. ¿Podemos buscar juntos otra forma de soltar lo que sientes?",
		"Siento que estés sufriendo tanto como para pensar en lastimarte. Tu dolor es real y mereces ayuda, no castigo.",
	},
	model.CrisisSevereCollapse: {
		"Escucho lo agotado que estás. Cuando todo pesa tanto, no hace falta resolver nada ahora: solo respira conmigo un momento.",
		"Está bien no poder más. No tienes que demostrar nada; estoy aquí y no me voy.",
	},
}

var emergencyReferralMessage = "Entiendo. Llama ahora mismo al 112 o al número de emergencias de tu zona. Si puedes, avisa también a alguien cercano. Yo sigo aquí contigo mientras tanto."

const crisisContext = "Prioriza la seguridad. Frases cortas, tono cálido y sereno. No intentes resolver problemas ni des consejos prácticos. Valida el dolor, sugiere ayuda profesional y mantén la conversación abierta."

var professionalHelpSuffix = " Cuando te sientas con fuerzas, hablar con un profesional puede ayudarte mucho más que yo."

var therapyMessages = []string{
	"Te escucho. Tómate el tiempo que necesites, no hay prisa.",
	"Estoy aquí para ti. Cuéntame más, ¿cómo se siente eso por dentro?",
	"Gracias por compartirlo conmigo. ¿Qué es lo que más pesa de todo esto?",
}

var therapyClosingMessages = []string{
	"Me alegra mucho que te sientas mejor. Aquí estaré cuando quieras volver a hablar.",
	"Qué bueno escuchar eso. Recuerda que puedes volver cuando lo necesites.",
}

const therapyContext = "Escucha activa. Refleja lo que la persona dice, valida emociones, pregunta con suavidad. No diagnostiques ni des soluciones rápidas."

var normalMessages = []string{
	"Cuéntame, ¿en qué te puedo acompañar hoy?",
	"Aquí estoy. ¿Qué tal va tu día?",
	"Te leo. ¿Qué me quieres contar?",
}

var supportOpeners = []string{
	"Noto que hoy el ánimo está pesado. Si quieres hablarlo, aquí estoy.",
	"Percibo que no es un buen momento. ¿Quieres contarme qué pasa?",
}

var parentalOffers = map[model.ParentalFlavor][]string{
	model.ParentalDad: {
		"Si te sirve, puedo hablarte un rato como lo haría un papá: sin juzgar y de tu lado. ¿Quieres?",
	},
	model.ParentalMom: {
		"Si te hace falta, puedo acompañarte como lo haría una mamá: con calma y cariño. ¿Te gustaría?",
	},
}

var parentalOpeners = map[model.ParentalFlavor][]string{
	model.ParentalDad: {
		"Aquí estoy, como un papá que te escucha. Cuéntamelo todo, sin miedo.",
		"Ven, siéntate conmigo. Lo que te pase, lo vemos juntos.",
	},
	model.ParentalMom: {
		"Aquí me tienes, como una mamá que no se va. Cuéntame, mi amor, ¿qué pasó?",
		"Tranquilo, respira. Estoy contigo y no te voy a soltar.",
	},
}

var parentalMessages = map[model.ParentalFlavor][]string{
	model.ParentalDad: {
		"Estoy orgulloso de que lo estés intentando. Un paso a la vez.",
		"Lo que sientes tiene sentido. No estás solo en esto.",
	},
	model.ParentalMom: {
		"Hiciste lo que pudiste, y eso vale mucho. Descansa un poco.",
		"Te entiendo, de verdad. Mañana lo vemos con calma, juntos.",
	},
}

var parentalClosingMessages = []string{
	"Aquí estaré siempre que necesites ese apoyo. Cuídate mucho.",
	"Me quedo tranquilo sabiendo que estás mejor. Vuelve cuando quieras.",
}

const parentalContext = "Habla en un registro cálido y protector, como un padre o madre de confianza. Frases cortas, afecto explícito, cero reproches."

var supervisionRiskMessages = []string{
	"Entiendo, gracias por contármelo. ¿Estás bien? ¿Hay alguien cerca que pueda acompañarte ahora?",
	"Te escucho. Quiero asegurarme de que estés bien; respóndeme en cuanto puedas, ¿sí?",
}

var supervisionCheckInMessages = []string{
	"¡Hola! ¿Cómo vas? Aquí sigo contigo.",
	"Me alegra leerte. ¿Todo en orden por ahí?",
}

var supervisionAmbientMessages = []string{
	"Aquí estoy, acompañándote. Cuéntame lo que quieras.",
	"Sigo por aquí contigo. ¿Qué estás haciendo?",
}

var supervisionClosingMessages = []string{
	"De acuerdo, termino la supervisión. Me avisas cuando quieras que vuelva a acompañar.",
}

const supervisionContext = "Estás acompañando a una persona vulnerable en nombre de su cuidador. Tono simple, amable y constante. Ante cualquier señal de riesgo, confirma que la persona está bien y avisa que su cuidador será contactado si no responde."

var invalidStopMessages = map[model.Mode]string{
	model.ModeSupervision:  "Ahora mismo no hay ninguna supervisión activa que detener.",
	model.ModeParentalRole: "No estamos en modo acompañamiento familiar ahora mismo.",
	model.ModeTherapy:      "No estábamos en una sesión de desahogo, pero aquí me tienes igual.",
}
