// Package grounding assembles the authoritative context block that is the
// completion provider's only source of truth, and resolves the pricing,
// contact and installation lines shared with the pipeline.
package grounding

import (
	"fmt"
	"strings"

	"concierge/prompts"
	"concierge/tenant"
)

// DefaultPricingLine is used when neither a pricing FAQ nor a knowledge
// pricing policy exists.
const DefaultPricingLine = "Our pricing depends on your needs. Please contact our team and we'll send you a tailored quote."

// DefaultInstallation is used when no FAQ covers installation.
const DefaultInstallation = "Our team guides every customer through setup. Ask us and we'll walk you through it."

// NotProvided marks an absent contact line in the context block.
const NotProvided = "not provided"

var (
	pricingKeywords      = vocabulary("pricing", "cost", "monthly", "fee", "charge", "subscription", "price", "money")
	contactKeywords      = vocabulary("contact", "email", "phone", "call", "reach", "support", "whatsapp", "address")
	installationKeywords = vocabulary("install", "installation", "setup", "set up", "embed", "integrate", "integration", "onboarding")

	pricingPolicyKeys = []string{"pricing_policy", "pricingPolicy", "pricing"}
	contactKeys       = []string{"contact", "contact_info", "contactInfo"}
)

func vocabulary(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

func hasKeyword(faq tenant.FAQ, vocab map[string]struct{}) bool {
	for _, kw := range faq.Keywords {
		if _, ok := vocab[strings.ToLower(strings.TrimSpace(kw))]; ok {
			return true
		}
	}
	return false
}

// PricingLine resolves the authoritative pricing answer: the first FAQ
// tagged with a pricing keyword, then the knowledge pricing policy, then
// DefaultPricingLine.
func PricingLine(cfg tenant.Config) string {
	for _, faq := range cfg.FAQs {
		if hasKeyword(faq, pricingKeywords) && strings.TrimSpace(faq.Answer) != "" {
			return faq.Answer
		}
	}
	if policy, ok := cfg.Knowledge.Lookup(pricingPolicyKeys...); ok {
		return policy
	}
	return DefaultPricingLine
}

// ContactLine resolves contact details the same way as PricingLine but
// returns "" instead of inventing a default.
func ContactLine(cfg tenant.Config) string {
	for _, faq := range cfg.FAQs {
		if hasKeyword(faq, contactKeywords) && strings.TrimSpace(faq.Answer) != "" {
			return faq.Answer
		}
	}
	if contact, ok := cfg.Knowledge.Lookup(contactKeys...); ok {
		return contact
	}
	return ""
}

// InstallationSummary prefers an FAQ tagged with an installation keyword,
// then one whose question mentions installation, then DefaultInstallation.
func InstallationSummary(cfg tenant.Config) string {
	for _, faq := range cfg.FAQs {
		if hasKeyword(faq, installationKeywords) {
			return faq.Answer
		}
	}
	for _, faq := range cfg.FAQs {
		q := strings.ToLower(faq.Question)
		for term := range installationKeywords {
			if q != "" && strings.Contains(q, term) {
				return faq.Answer
			}
		}
	}
	return DefaultInstallation
}

// Build renders the grounding context for t. The output depends only on
// t's configuration and never includes facts that are not configured.
func Build(t *tenant.Tenant) string {
	cfg := t.Config
	var b strings.Builder

	b.WriteString(prompts.GroundingHeader())
	b.WriteString("\n\n")

	if style := strings.TrimSpace(cfg.Style); style != "" {
		b.WriteString("Style guidance:\n")
		b.WriteString(style)
		b.WriteString("\n\n")
	}

	contact := ContactLine(cfg)
	if contact == "" {
		contact = NotProvided
	}
	fmt.Fprintf(&b, "Brand: %s\n", cfg.Brand)
	fmt.Fprintf(&b, "Authoritative pricing: %s\n", PricingLine(cfg))
	fmt.Fprintf(&b, "Contact: %s\n", contact)
	fmt.Fprintf(&b, "Installation: %s\n\n", InstallationSummary(cfg))

	b.WriteString(strings.TrimSpace(prompts.GroundingPolicy()))
	b.WriteString("\n")

	faqs := cfg.FAQs
	if limit := t.Settings.FAQDigestCap; limit > 0 && len(faqs) > limit {
		faqs = faqs[:limit]
	}
	if len(faqs) > 0 {
		b.WriteString("\nFAQ:\n")
		for _, faq := range faqs {
			b.WriteString(faqLine(faq))
		}
	}

	if snippets := tenant.Flatten(cfg.Knowledge); len(snippets) > 0 {
		b.WriteString("\nKnowledge:\n")
		for _, s := range snippets {
			fmt.Fprintf(&b, "- %s: %s\n", s.Label, s.Answer)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func faqLine(faq tenant.FAQ) string {
	question := faq.Question
	if question == "" && len(faq.Keywords) > 0 {
		question = strings.Join(faq.Keywords, ", ")
	}
	if question == "" {
		return fmt.Sprintf("- %s\n", faq.Answer)
	}
	return fmt.Sprintf("- Q: %s\n  A: %s\n", question, faq.Answer)
}
