package classification

// DefaultRules returns the built-in campus store tables.
func DefaultRules() Rules {
	return Rules{
		Departments: []DepartmentRule{
			{ID: "101", Category: "Drinks"},
			{ID: "102", Category: "Snacks"},
			{ID: "103", Category: "Dairy & Eggs"},
			{ID: "104", Category: "Produce"},
			{ID: "105", Category: "Frozen"},
			{ID: "106", Category: "Bakery"},
			{ID: "107", Category: "Prepared Foods"},
			{ID: "108", Category: "Pantry"},
			{ID: "109", Category: "Personal Care"},
			{ID: "110", Category: "Household"},
			{ID: "111", Category: "Health"},
			{ID: "112", Category: "School Supplies"},
		},
		Categories: []KeywordRule{
			// Names that contain a drink keyword but are not drinks.
			{Value: "Produce", Keywords: []string{"watermelon", "watercress"}},
			{Value: "Drinks", Keywords: []string{
				"water", "soda", "cola", "juice", "coffee", "cold brew", "latte", "espresso",
				"iced tea", "green tea", "chai", "matcha", "kombucha", "lemonade", "seltzer",
				"energy drink", "gatorade", "smoothie",
			}},
			{Value: "Frozen", Keywords: []string{"frozen", "ice cream", "popsicle", "gelato"}},
			{Value: "Dairy & Eggs", Keywords: []string{"milk", "yogurt", "cheese", "butter", "eggs"}},
			{Value: "Bakery", Keywords: []string{"bread", "bagel", "muffin", "croissant", "donut", "scone", "cookie"}},
			{Value: "Prepared Foods", Keywords: []string{
				"sandwich", "wrap", "burrito", "pizza", "salad", "sushi", "bowl", "soup", "burger", "quesadilla",
			}},
			{Value: "Snacks", Keywords: []string{
				"chips", "pretzel", "popcorn", "granola", "candy", "chocolate", "gummy", "cracker", "jerky", "trail mix", "protein bar",
			}},
			{Value: "Produce", Keywords: []string{
				"apple", "banana", "orange", "grape", "berry", "berries", "avocado", "carrot", "lettuce", "fruit",
			}},
			{Value: "Pantry", Keywords: []string{"ramen", "noodle", "pasta", "rice", "cereal", "oatmeal", "peanut butter", "sauce"}},
			{Value: "Personal Care", Keywords: []string{"shampoo", "soap", "toothpaste", "toothbrush", "deodorant", "lotion"}},
			{Value: "Health", Keywords: []string{"ibuprofen", "tylenol", "vitamin", "bandage", "cough", "allergy"}},
			{Value: "Household", Keywords: []string{"detergent", "paper towel", "tissue", "trash bag", "battery", "batteries"}},
			{Value: "School Supplies", Keywords: []string{"notebook", "pencil", "highlighter", "binder", "folder", "scantron"}},
		},
		Glyphs: []KeywordRule{
			{Value: "🍉", Keywords: []string{"watermelon"}},
			{Value: "🥬", Keywords: []string{"watercress", "lettuce", "kale"}},
			{Value: "💧", Keywords: []string{"water", "seltzer"}},
			{Value: "☕", Keywords: []string{"coffee", "cold brew", "latte", "espresso"}},
			{Value: "🍵", Keywords: []string{"green tea", "matcha", "chai"}},
			{Value: "🧋", Keywords: []string{"boba", "bubble tea"}},
			{Value: "🧃", Keywords: []string{"juice", "lemonade"}},
			{Value: "🥤", Keywords: []string{"soda", "cola", "energy drink", "gatorade", "smoothie"}},
			{Value: "🍨", Keywords: []string{"ice cream", "gelato"}},
			{Value: "🥛", Keywords: []string{"milk"}},
			{Value: "🧀", Keywords: []string{"cheese"}},
			{Value: "🍆", Keywords: []string{"eggplant"}},
			{Value: "🍔", Keywords: []string{"veggie burger"}},
			{Value: "🥦", Keywords: []string{"veggie", "broccoli"}},
			{Value: "🥚", Keywords: []string{"egg"}},
			{Value: "🥯", Keywords: []string{"bagel"}},
			{Value: "🍞", Keywords: []string{"bread", "toast"}},
			{Value: "🍪", Keywords: []string{"cookie"}},
			{Value: "🍕", Keywords: []string{"pizza"}},
			{Value: "🥪", Keywords: []string{"sandwich"}},
			{Value: "🌯", Keywords: []string{"burrito", "wrap"}},
			{Value: "🥗", Keywords: []string{"salad"}},
			{Value: "🍣", Keywords: []string{"sushi"}},
			{Value: "🍔", Keywords: []string{"burger"}},
			{Value: "🍜", Keywords: []string{"ramen", "noodle", "soup"}},
			{Value: "🍬", Keywords: []string{"licorice", "candy", "gummy"}},
			{Value: "🍚", Keywords: []string{"rice"}},
			{Value: "🍫", Keywords: []string{"chocolate"}},
			{Value: "🥨", Keywords: []string{"pretzel"}},
			{Value: "🍿", Keywords: []string{"popcorn"}},
			{Value: "🥔", Keywords: []string{"chips"}},
			{Value: "🍍", Keywords: []string{"pineapple"}},
			{Value: "🍎", Keywords: []string{"apple"}},
			{Value: "🍌", Keywords: []string{"banana"}},
			{Value: "🍊", Keywords: []string{"orange"}},
			{Value: "🍇", Keywords: []string{"grape"}},
			{Value: "🥑", Keywords: []string{"avocado"}},
			{Value: "🧴", Keywords: []string{"shampoo", "soap", "lotion", "deodorant"}},
			{Value: "🪥", Keywords: []string{"toothpaste", "toothbrush"}},
			{Value: "💊", Keywords: []string{"ibuprofen", "tylenol", "vitamin", "allergy"}},
			{Value: "🔋", Keywords: []string{"battery", "batteries"}},
			{Value: "📓", Keywords: []string{"notebook", "binder", "folder"}},
			{Value: "✏️", Keywords: []string{"pencil", "highlighter"}},
		},
	}
}
