package notify

import (
	"bytes"
	"fmt"
	"text/template"

	"planora/internal/domain"
)

// Rendered a template after parameter substitution.
type Rendered struct {
	Subject string
	Body    string
}

type builtinTemplate struct {
	subject string
	body    string
}

// Built-in defaults, used when an event has no override for
// (channel, name). Placeholders are the effect params.
var builtins = map[string]map[string]builtinTemplate{
	domain.ChannelEmail: {
		TemplateRSVPConfirmed: {
			subject: "Your RSVP for {{.event_title}} is confirmed",
			body: "Dear {{.guest_name}},\n\n" +
				"Thank you for confirming your attendance at {{.event_title}}. " +
				"{{.couple_names}} are delighted you will be there.\n\n" +
				"If your plans change, you can update your response any time using your RSVP link.\n",
		},
		TemplateRSVPDeclined: {
			subject: "We received your RSVP for {{.event_title}}",
			body: "Dear {{.guest_name}},\n\n" +
				"We have recorded that you are unable to attend {{.event_title}}. " +
				"{{.couple_names}} will miss you!\n\n" +
				"If your plans change, you can update your response any time using your RSVP link.\n",
		},
		TemplateDetailsReceived: {
			subject: "Your travel details for {{.event_title}}",
			body: "Dear {{.guest_name}},\n\n" +
				"We have received your travel and accommodation details for {{.event_title}}. " +
				"We will be in touch with anything further you need to know.\n",
		},
	},
	domain.ChannelWhatsApp: {
		TemplateRSVPConfirmed: {
			body: "Hi {{.first_name}}! Your RSVP for {{.event_title}} is confirmed. " +
				"{{.couple_names}} can't wait to see you!",
		},
		TemplateRSVPDeclined: {
			body: "Hi {{.first_name}}, we've noted you can't make it to {{.event_title}}. " +
				"{{.couple_names}} will miss you!",
		},
		TemplateDetailsReceived: {
			body: "Hi {{.first_name}}, we've received your travel details for {{.event_title}}. Thank you!",
		},
	},
}

// Render substitutes params into an event override, falling back to the
// built-in default for (channel, name). Unknown names are an error.
func Render(channel, name string, override *domain.MessageTemplate, params map[string]string) (Rendered, error) {
	subject, body := "", ""
	if override != nil {
		subject, body = override.Subject, override.Body
	} else {
		b, ok := builtins[channel][name]
		if !ok {
			return Rendered{}, fmt.Errorf("no template %s/%s", channel, name)
		}
		subject, body = b.subject, b.body
	}

	renderedSubject, err := renderText(name+"_subject", subject, params)
	if err != nil {
		return Rendered{}, err
	}
	renderedBody, err := renderText(name+"_body", body, params)
	if err != nil {
		return Rendered{}, err
	}
	return Rendered{Subject: renderedSubject, Body: renderedBody}, nil
}

func renderText(name, text string, params map[string]string) (string, error) {
	if text == "" {
		return "", nil
	}
	tpl, err := template.New(name).Option("missingkey=zero").Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}
