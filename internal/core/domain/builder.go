package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// AssetName identifies the appliance in every case and evidence record.
const AssetName = "Darktrace"

// systemModelCategory marks breaches raised by the appliance itself rather
// than by a monitored device.
const systemModelCategory = "System::System"

const timeLayout = "2006-01-02T15:04:05"

// FormatMillis converts a millisecond epoch to the textual timestamp format
// the case store expects. Sub-second precision is not carried.
func FormatMillis(ms int64) string {
	return time.Unix(ms/1000, 0).UTC().Format(timeLayout) + ".00Z"
}

// DeviceName picks a display name for the device behind a breach, in
// preference order: label, hostname, IP, the appliance itself for
// system-level models, then a generic placeholder.
func DeviceName(label, hostname, ip, modelName string) string {
	switch {
	case label != Unknown:
		return label
	case hostname != Unknown:
		return hostname
	case ip != Unknown:
		return ip
	case modelName == systemModelCategory:
		return AssetName
	default:
		return "A Device"
	}
}

// CleanDescription strips escape sequences out of a model description so the
// text cannot smuggle control characters into a downstream template.
func CleanDescription(description string) string {
	quoted, err := json.Marshal(description)
	if err != nil {
		return description
	}
	s := string(quoted)
	s = strings.ReplaceAll(s, `\`, "#")
	s = strings.ReplaceAll(s, "##n##n", " ")
	s = strings.ReplaceAll(s, `"`, "")
	return s
}

// BreachScore converts the 0-1 model score into the 0-100 scale used
// everywhere downstream.
func BreachScore(breach Record) int {
	return int(math.Round(AsFloat(breach.GetOr(0.0, "score")) * 100))
}

// BreachSeverity derives the severity of a model breach. An explicit model
// category (or a compliance flag, which forces the Compliance category)
// wins over the numeric score.
func BreachSeverity(breach Record) Severity {
	category := AsString(breach.Get("model", "then", "category"))
	compliance := AsBool(breach.GetOr(false, "model", "then", "compliance"))

	switch {
	case compliance:
		return SeverityFromCategory("Compliance")
	case category != Unknown && category != "":
		return SeverityFromCategory(category)
	default:
		return SeverityFromScore(BreachScore(breach))
	}
}

// BreachCase builds the normalized Case for a raw model breach.
func BreachCase(breach Record) Case {
	score := BreachScore(breach)
	severity := BreachSeverity(breach)

	pbid := AsString(breach.GetOr("", "pbid"))
	modelName := AsString(breach.Get("model", "then", "name"))
	did := AsString(breach.Get("device", "did"))
	hostname := AsString(breach.Get("device", "hostname"))
	label := AsString(breach.Get("device", "devicelabel"))
	ip := AsString(breach.Get("device", "ip"))
	deviceName := DeviceName(label, hostname, ip, modelName)

	return Case{
		Name:             fmt.Sprintf("%s breached model %s with a score of %d%%", deviceName, modelName, score),
		Description:      fmt.Sprintf("%s (%s) breached model %s (%s) with a score of %d%%", deviceName, did, modelName, pbid, score),
		StartTime:        FormatMillis(AsInt64(breach.GetOr(0, "time"))),
		Severity:         severity,
		SourceIdentifier: pbid,
		AssetName:        AssetName,
		Score:            strconv.Itoa(score),
	}
}

// BreachEvidence builds the single Evidence record for a model breach,
// attached to the Case created from the same breach.
func BreachEvidence(c Case, breach Record, caseID, baseURL string) Evidence {
	modelName := AsString(breach.Get("model", "then", "name"))
	parts := strings.Split(modelName, "::")

	return Evidence{
		Name:             strings.Join(parts[1:], " / "),
		Type:             parts[0],
		DeviceLabel:      AsString(breach.Get("device", "devicelabel")),
		Description:      CleanDescription(AsString(breach.Get("model", "then", "description"))),
		StartTime:        c.StartTime,
		Severity:         c.Severity,
		SourceIdentifier: c.SourceIdentifier,
		AssetName:        c.AssetName,
		CaseID:           caseID,
		CEF:              breachCEF(breach, c.SourceIdentifier, parts[0], baseURL),
	}
}

func breachCEF(breach Record, sourceID, modelType, baseURL string) map[string]any {
	cef := map[string]any{
		"modelBreachId":  sourceID,
		"modelBreachUrl": fmt.Sprintf("%s/#modelbreach/%s", baseURL, sourceID),
	}

	if modelType != "System" {
		cef["deviceId"] = breach.Get("device", "did")
		cef["deviceAddress"] = breach.Get("device", "ip")
		cef["deviceHostname"] = breach.Get("device", "hostname")
		cef["deviceLabel"] = breach.Get("device", "devicelabel")
	} else {
		cef["systemNote"] = "Login to the Darktrace UI to see the system alerts"
	}

	if strings.Contains(modelType, "Antigena") {
		if antigena, ok := breach.GetOr(nil, "model", "now", "actions", "antigena").(map[string]any); ok {
			cef["antigenaAction"] = antigena["action"]
			cef["antigenaDuration"] = (time.Duration(AsFloat(antigena["duration"])) * time.Second).String()
			cef["antigenaNote"] = "Use the post tag action to trigger antigena actions for deployments in human confirmation mode"
		}
	}

	return cef
}

// IncidentCase builds the normalized Case for an incident group. Display
// fields come from the most recent event in the group.
func IncidentCase(group IncidentGroup) Case {
	event := group.Events[len(group.Events)-1]
	identifier := AsString(event.GetOr("", "breachDevices", 0, "identifier"))
	if identifier == "" {
		identifier = AsString(event.GetOr("", "breachDevices", 0, "ip"))
	}

	name := "AI Analyst found incident for " + identifier
	return Case{
		Name:             name,
		Description:      name,
		Severity:         SeverityFromCategory(AsString(event.GetOr("", "groupCategory"))),
		SourceIdentifier: group.Key,
		AssetName:        AssetName,
		Data:             group.Events,
	}
}

// IncidentEvidence builds the primary Evidence record for one incident event.
func IncidentEvidence(event Record, caseID, baseURL string) Evidence {
	id := AsString(event.GetOr("", "id"))

	return Evidence{
		Name:             AsString(event.GetOr("", "title")),
		Label:            "AI Analyst Incident",
		Type:             "Incident",
		StartTime:        FormatMillis(AsInt64(event.GetOr(0, "periods", 0, "start"))),
		EndTime:          FormatMillis(AsInt64(event.GetOr(0, "periods", 0, "end"))),
		Severity:         SeverityFromCategory(AsString(event.GetOr("", "groupCategory"))),
		SourceIdentifier: id,
		AssetName:        AssetName,
		CaseID:           caseID,
		UUID:             id,
		Summary:          AsString(event.GetOr("", "summary")),
		CEF:              incidentCEF(event, baseURL),
	}
}

func incidentCEF(event Record, baseURL string) map[string]any {
	cef := map[string]any{}

	if devices, ok := event.GetOr(nil, "breachDevices").([]any); ok && len(devices) > 0 {
		cef["deviceId"] = event.Get("breachDevices", 0, "did")
		cef["deviceHostname"] = event.Get("breachDevices", 0, "hostname")
		cef["deviceAddress"] = event.Get("breachDevices", 0, "ip")
		cef["deviceLabel"] = event.Get("breachDevices", 0, "identifier")
	}

	cef["incidentUrl"] = fmt.Sprintf("%s/#aiagroup/%s", baseURL, AsString(event.GetOr("", "currentGroup")))
	return cef
}

// RelatedBreachEvidence builds one Evidence record per model breach
// referenced inside an incident event.
func RelatedBreachEvidence(event Record, caseID, baseURL string) []Evidence {
	related, ok := event.GetOr(nil, "relatedBreaches").([]any)
	if !ok {
		return nil
	}

	var out []Evidence
	for _, entry := range related {
		raw, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		breach := Record(raw)

		modelName := AsString(breach.GetOr("", "modelName"))
		parts := strings.Split(modelName, " / ")
		score := int(AsFloat(breach.GetOr(0.0, "threatScore")))
		pbid := AsString(breach.GetOr("", "pbid"))

		out = append(out, Evidence{
			Name:             strings.Join(parts[1:], "/"),
			Type:             parts[0],
			Label:            "Model Breach",
			Description:      "See the corresponding model breach event for more information",
			StartTime:        FormatMillis(AsInt64(breach.GetOr(0, "timestamp"))),
			Severity:         SeverityFromScore(score),
			SourceIdentifier: pbid,
			AssetName:        AssetName,
			CaseID:           caseID,
			CEF: map[string]any{
				"modelBreachId":  pbid,
				"modelBreachUrl": fmt.Sprintf("%s/#modelbreach/%s", baseURL, pbid),
			},
		})
	}

	return out
}
