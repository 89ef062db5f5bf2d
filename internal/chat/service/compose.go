package service

import (
	"fmt"
	"strings"

	catalogrepo "fitment_chat_backend/internal/catalog/repository"
	catalog "fitment_chat_backend/internal/catalog/service"
	"fitment_chat_backend/internal/chat/session"
)

// Fact blocks injected as system messages before the reply call. The persona
// instructs the model to treat VERIFIED DATA as the only source of catalog
// truth, so every block opens with that marker.

func carLabel(slots session.Slots) string {
	parts := []string{slots.Brand, slots.Model}
	if slots.Version != "" {
		parts = append(parts, slots.Version)
	} else if slots.Year != 0 {
		parts = append(parts, fmt.Sprintf("%d", slots.Year))
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func wheelLabel(slots session.Slots) string {
	if slots.Diameter != "" {
		return strings.TrimSpace(slots.Wheel + " " + slots.Diameter + `"`)
	}
	return slots.Wheel
}

// exactFitmentBlock renders a confirmed combination with its practical notes
// and homologation list.
func exactFitmentBlock(slots session.Slots, fitment catalog.Fitment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "VERIFIED DATA - exact fitment found for %s with wheel %s:\n", carLabel(slots), wheelLabel(slots))
	fmt.Fprintf(&b, "- fitment type: %s\n", fitment.FitmentType)
	if fitment.FitmentAdvice != "" {
		fmt.Fprintf(&b, "- advice: %s\n", fitment.FitmentAdvice)
	}
	if fitment.LimitationLocalized != "" {
		fmt.Fprintf(&b, "- limitations: %s\n", fitment.LimitationLocalized)
	} else if fitment.Limitation != "" {
		fmt.Fprintf(&b, "- limitations: %s\n", fitment.Limitation)
	}
	if fitment.Channel != "" {
		fmt.Fprintf(&b, "- rim width (channel): %s\n", fitment.Channel)
	}
	if fitment.CenteringRing != "" {
		fmt.Fprintf(&b, "- centering ring: %s\n", fitment.CenteringRing)
	}
	if fitment.BoltNut != "" {
		fmt.Fprintf(&b, "- bolts/nuts: %s\n", fitment.BoltNut)
	}
	fmt.Fprintf(&b, "- plug and play: %t\n", fitment.PlugPlay)
	if len(fitment.Homologations) == 0 {
		b.WriteString("- homologations: none recorded for this combination\n")
	} else {
		b.WriteString("- homologations:\n")
		for _, h := range fitment.Homologations {
			fmt.Fprintf(&b, "  - %s: %s", h.Scheme, h.Code)
			if h.Doc != "" {
				fmt.Fprintf(&b, " (document: %s)", h.Doc)
			}
			if h.Note != "" {
				fmt.Fprintf(&b, " note: %s", h.Note)
			}
			b.WriteString("\n")
		}
	}
	b.WriteString("Present this combination as verified and approved.")
	return b.String()
}

// negativeFitmentBlock renders the binding "not approved" answer for a fully
// specified combination with no catalog record. When strict is false the
// assistant may soften to "not in the catalog, contact a dealer to verify".
func negativeFitmentBlock(slots session.Slots, strict bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "VERIFIED DATA - no fitment record exists for %s with wheel %s.\n", carLabel(slots), wheelLabel(slots))
	if strict {
		b.WriteString("Tell the user plainly that this combination is not approved in the catalog. Do not suggest it might still work.")
	} else {
		b.WriteString("Tell the user this combination is not present in the catalog and suggest verifying with an official dealer.")
	}
	return b.String()
}

// familyOptionsBlock renders the advisory wheel options for a car family.
func familyOptionsBlock(slots session.Slots, options []catalogrepo.WheelModelOption) string {
	var b strings.Builder
	if len(options) == 0 {
		fmt.Fprintf(&b, "VERIFIED DATA - no wheel applications recorded for %s %s.\n", slots.Brand, slots.Model)
		b.WriteString("Tell the user no catalog applications exist for this model and suggest contacting a dealer.")
		return b.String()
	}
	fmt.Fprintf(&b, "VERIFIED DATA - wheel models with applications for %s %s (family level, newest first):\n", slots.Brand, slots.Model)
	for _, option := range options {
		fmt.Fprintf(&b, "- %s (up to %d\")", option.ModelName, option.MaxDiameter)
		if option.Finishes != "" {
			fmt.Fprintf(&b, " finishes: %s", option.Finishes)
		}
		b.WriteString("\n")
	}
	b.WriteString("These are family-level suggestions, not approvals for a specific version. ")
	b.WriteString("Invite the user to share the exact version for a binding check.")
	return b.String()
}

// familyHomologationsBlock renders homologation coverage across a car family.
func familyHomologationsBlock(slots session.Slots, rows []catalogrepo.FamilyHomologationRow) string {
	var b strings.Builder
	if len(rows) == 0 {
		fmt.Fprintf(&b, "VERIFIED DATA - no homologation records found for %s %s at family level.\n", slots.Brand, slots.Model)
		b.WriteString("Say so and offer a binding check if the user provides the exact version.")
		return b.String()
	}
	fmt.Fprintf(&b, "VERIFIED DATA - homologation coverage for %s %s (family level):\n", slots.Brand, slots.Model)
	for _, row := range rows {
		schemes := make([]string, 0, 5)
		if row.TUV != "" {
			schemes = append(schemes, "TUV "+row.TUV)
		}
		if row.KBA != "" {
			schemes = append(schemes, "KBA "+row.KBA)
		}
		if row.ECE != "" {
			schemes = append(schemes, "ECE "+row.ECE)
		}
		if row.JWL != "" {
			schemes = append(schemes, "JWL "+row.JWL)
		}
		if row.ITA != "" {
			schemes = append(schemes, "ITA "+row.ITA)
		}
		if len(schemes) == 0 {
			continue
		}
		fmt.Fprintf(&b, "- %s %d\": %s\n", row.WheelModel, row.Diameter, strings.Join(schemes, ", "))
	}
	b.WriteString("This is family-level coverage. The binding document depends on the exact version.")
	return b.String()
}

// wheelInfoBlock renders the technical summary of one wheel model.
func wheelInfoBlock(info catalogrepo.WheelInfoRow) string {
	var b strings.Builder
	fmt.Fprintf(&b, "VERIFIED DATA - wheel model %s:\n", info.ModelName)
	if info.Diameters != "" {
		fmt.Fprintf(&b, "- available diameters: %s\n", info.Diameters)
	}
	if info.Finishes != "" {
		fmt.Fprintf(&b, "- finishes: %s\n", info.Finishes)
	}
	b.WriteString("Use only these values when describing the wheel.")
	return b.String()
}

// wheelApplicationsBlock renders the car families a wheel fits at a diameter.
func wheelApplicationsBlock(slots session.Slots, families []catalogrepo.CarFamilyRow) string {
	var b strings.Builder
	if len(families) == 0 {
		fmt.Fprintf(&b, "VERIFIED DATA - no applications found for wheel %s.\n", wheelLabel(slots))
		b.WriteString("Say no applications exist in the catalog for this wheel and diameter.")
		return b.String()
	}
	fmt.Fprintf(&b, "VERIFIED DATA - car models with applications for wheel %s:\n", wheelLabel(slots))
	for _, family := range families {
		fmt.Fprintf(&b, "- %s %s\n", family.ManufacturerName, family.ModelName)
	}
	b.WriteString("These are family-level applications. A binding answer needs the exact version.")
	return b.String()
}

// commercialBlock steers purchase interest to the dealer network.
func commercialBlock() string {
	return "If the user shows purchase interest, refer them to the official dealer " +
		"network for prices and availability. Never quote prices yourself."
}

// carNotFoundBlock covers a brand or model name with no catalog match.
func carNotFoundBlock(slots session.Slots) string {
	return fmt.Sprintf(
		"VERIFIED DATA - no catalog match for the vehicle %q %q. "+
			"Say the model was not found and ask the user to check the spelling of brand and model.",
		slots.Brand, slots.Model)
}

// wheelNotFoundBlock covers a wheel model name with no catalog match.
func wheelNotFoundBlock(slots session.Slots) string {
	return fmt.Sprintf(
		"VERIFIED DATA - no catalog match for a wheel model named %q. "+
			"Say the wheel was not found and ask the user to check the name.",
		slots.Wheel)
}

// missingCarDataBlock asks for exactly the missing car fields.
func missingCarDataBlock(slots session.Slots) string {
	missing := make([]string, 0, 3)
	if slots.Brand == "" {
		missing = append(missing, "brand")
	}
	if slots.Model == "" {
		missing = append(missing, "model")
	}
	if slots.Year == 0 && slots.Version == "" {
		missing = append(missing, "year or version")
	}
	return fmt.Sprintf(
		"The user has not provided enough vehicle data yet. Missing: %s. Ask only for these, briefly.",
		strings.Join(missing, ", "))
}

// missingWheelDataBlock asks for exactly the missing wheel fields.
func missingWheelDataBlock(slots session.Slots) string {
	missing := make([]string, 0, 2)
	if slots.Wheel == "" {
		missing = append(missing, "wheel model name")
	}
	if slots.Diameter == "" {
		missing = append(missing, "diameter")
	}
	return fmt.Sprintf(
		"The user has not provided enough wheel data yet. Missing: %s. Ask only for these, briefly.",
		strings.Join(missing, ", "))
}

// versionNeededBlock covers the case where the family is known but only a
// bare year was given, so no exact check is possible.
func versionNeededBlock() string {
	return "The exact version/trim is needed for a binding fitment or homologation answer. " +
		"Offer the family-level data above and ask for the version text (e.g. engine or trim name)."
}
