package bot

import (
	"testing"

	"github.com/stretchr/testify/require"

	"ronid.ru/shop-bot/internal/features/orders"
)

func TestDeliveredCodesMessage(t *testing.T) {
	o := orders.Order{
		OrderID: "MB4QZ1K03525",
		Codes:   map[string][]string{"60": {"UC-AAA-111", "UC-BBB-222"}},
	}

	text := deliveredCodesMessage(o)
	require.Contains(t, text, "Заказ MB4QZ1K03525 выполнен")
	require.Contains(t, text, "60 (2 кода):")
	// коды в обратных кавычках — сообщение уходит с Markdown-разметкой
	require.Contains(t, text, "`UC-AAA-111`")
	require.Contains(t, text, "`UC-BBB-222`")
}
