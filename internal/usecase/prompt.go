package usecase

import (
	"fmt"
	"strings"

	"github.com/DRSN-tech/go-recommender/internal/domain"
)

const chatSystemPrompt = "You are a helpful product recommendation assistant. " +
	"Personalize responses based on past orders and follow-up queries."

// buildChatPrompt собирает пользовательский промпт. Для уточняющего запроса в промпт попадает предыдущий.
func buildChatPrompt(query string, prev *domain.ConversationTurn, purchases []string, products []domain.ProductSummary) string {
	var sb strings.Builder

	if len(purchases) > 0 {
		fmt.Fprintf(&sb, "The customer has previously bought: %s.\n", strings.Join(purchases, ", "))
	}

	if prev != nil {
		fmt.Fprintf(&sb, "The user previously asked: %q and I recommended some products.\n", prev.Query)
		fmt.Fprintf(&sb, "Now, they are asking: %q. Based on their previous query and the new one, here are the best product recommendations:\n", query)
	} else {
		fmt.Fprintf(&sb, "A user asked: %q. Based on their query, I recommend:\n", query)
	}

	writeProductList(&sb, products)

	if prev != nil {
		sb.WriteString("\nRespond in a friendly way, considering the previous context.")
	} else {
		sb.WriteString("\nProvide a friendly response suggesting these products.")
	}

	return sb.String()
}

// buildAdminPrompt — промпт для пояснения подборки администратору.
func buildAdminPrompt(customerID int64, query string, category *domain.Category, products []domain.ProductSummary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "An administrator is preparing recommendations for customer #%d", customerID)
	if query != "" {
		fmt.Fprintf(&sb, " with the request %q", query)
	}
	if category != nil {
		fmt.Fprintf(&sb, ", limited to the category %q", category.Name)
	}
	sb.WriteString(". The selected products are:\n")

	writeProductList(&sb, products)
	sb.WriteString("\nSummarize in two or three sentences why these products suit the customer.")

	return sb.String()
}

// fallbackReply — детерминированный ответ, когда генерация текста недоступна.
func fallbackReply(products []domain.ProductSummary) string {
	if len(products) == 0 {
		return "Sorry, I could not find products matching your request."
	}

	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}

	return "Here are some products you might like: " + strings.Join(names, ", ") + "."
}

func writeProductList(sb *strings.Builder, products []domain.ProductSummary) {
	if len(products) == 0 {
		sb.WriteString("(no matching products)\n")
		return
	}

	for i, p := range products {
		fmt.Fprintf(sb, "%d. %s - %s\n", i+1, p.Name, p.Description)
	}
}
