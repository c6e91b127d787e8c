package drafting

import (
	"fmt"
	"strings"

	"github.com/unclebandit/dojo-retention-backend/internal/model"
)

// Fixed texts returned instead of a draft.
const (
	DisabledMessage          = "La funcionalidad de IA está deshabilitada. Por favor, configure la clave de API."
	MotivationFailureMessage = "Hubo un error al generar el mensaje. Inténtalo de nuevo."
	InsightFailureMessage    = "Hubo un error al generar el insight. Inténtalo de nuevo."
	CampaignFailureMessage   = "No se pudo generar el mensaje de campaña. Inténtalo más tarde."
)

const displayDate = "02/01/2006"

var segmentGuidance = map[model.Segment]string{
	model.SegmentAll:             "Mensaje general de entusiasmo, invitando a todos a mantener la constancia y asistir a la próxima sesión destacada.",
	model.SegmentHighRisk:        "Enfatiza apoyo personalizado, ofrece acompañamiento y destaca los beneficios de regresar ya mismo. Empatiza con sus dificultades.",
	model.SegmentPendingPayments: "Recuerda amable pero directamente la importancia de ponerse al día para seguir avanzando. Ofrece ayuda para regularizar el pago.",
	model.SegmentNewMembers:      "Da la bienvenida, refuerza que están en el camino correcto y ofrece tips para la primera semana.",
	model.SegmentAdvanced:        "Invita a liderar, a inspirar a los más nuevos y a participar en retos especiales para cinturones avanzados.",
}

// CampaignPrompt builds the prompt for a message addressed to a whole segment.
func CampaignPrompt(segment model.Segment, instruction string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Eres el Sensei digital de la Academia Nacional de Artes Marciales. "+
		"Genera un mensaje breve (2-3 frases) para toda una campaña dirigida al segmento %q. "+
		"Debe ser motivador, claro, con tono energizante y moderno. "+
		"Usa emojis contextuales y termina con un llamado a la acción.\n\n", string(segment))
	fmt.Fprintf(&b, "Contexto adicional: %s\n", segmentGuidance[segment])
	if extra := strings.TrimSpace(instruction); extra != "" {
		fmt.Fprintf(&b, "Información extra del sensei: %s\n", extra)
	}
	b.WriteString("\nGenera solo el texto. No incluyas saludos tipo \"Hola\" y manténlo en primera persona plural.")
	return b.String()
}

func MotivationPrompt(m model.Member) string {
	return fmt.Sprintf(`Eres un Sensei de artes marciales muy inspirador y moderno.
Tu tarea es generar un mensaje corto (2-3 frases), personalizado y motivador para uno de tus alumnos.
El mensaje debe ser entregado como una notificación push.

Aquí están los datos del alumno:
- Nombre: %s
- Disciplina: %s
- Cinturón Actual: %s
- Estado de Pago: %s
- Tiempo en el dojo: Se unió el %s

Considera su perfil para personalizar el mensaje:
- Si su pago está pendiente o vencido, anímale a volver a clase y menciona sutilmente que se ponga al día.
- Si es un alumno avanzado, habla de liderazgo y de ser un ejemplo.
- Si es más nuevo, elogia su progreso y constancia.

El tono debe ser enérgico, positivo y un poco "tech". Usa emojis apropiados como 🥋, 🔥, 💪, ✨.
Genera solo el texto del mensaje, sin saludos adicionales.`,
		m.Name, m.Discipline, m.Belt, m.PaymentStatus, m.JoinDate.Format(displayDate))
}

func InsightPrompt(m model.Member) string {
	return fmt.Sprintf(`Analiza el siguiente perfil de estudiante y genera un insight breve y accionable (2-3 oraciones)
que ayude al instructor a mejorar la retención y compromiso del alumno.

Datos del estudiante:
- Nombre: %s
- Disciplina: %s
- Cinturón: %s
- Nivel de Riesgo: %s
- Estado de Pago: %s
- Fecha de ingreso: %s

Considera:
- Si el riesgo es alto, sugiere acciones concretas para retención
- Si hay pagos pendientes, recomienda estrategias de regularización
- Para cinturones avanzados, enfócate en liderazgo y mentoría
- Para principiantes, sugiere formas de fortalecer el compromiso

Primera oración: observación principal. Segunda: recomendación específica. Tercera (opcional): beneficio esperado.
El tono debe ser profesional pero cercano, orientado a resultados.`,
		m.Name, m.Discipline, m.Belt, m.RiskLevel, m.PaymentStatus, m.JoinDate.Format(displayDate))
}
