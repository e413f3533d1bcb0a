package model

// DrinkType groups items (spirits, syrups, mixers, ...).
type DrinkType struct {
    ID   string // drinktype.typeid
    Name string // drinktype.typename
}

// Recipe is a house drink that can be ordered as-is.
// Concentration is nullable in storage and nil when unknown.
type Recipe struct {
    ID            string // recipe.recipeid
    Name          string // recipe.recipename
    Steps         string // recipe.steps
    Flavor        string // recipe.flavor
    Mood          string // recipe.mood
    Concentration *int   // recipe.concentration
}

// Item is a stock component a member can add to a customized order.
// Concentration is its potency contribution per unit of amount.
type Item struct {
    ID            string // item.itemid
    Name          string // item.itemname
    Concentration *int   // item.concentration
    TypeID        string // item.typeid
    BrandID       string // item.brandid
}

// Ingredient is a non-alcoholic addition (ice, fruit, garnish).
type Ingredient struct {
    ID   string // ingredient.ingredientid
    Name string // ingredient.ingredientname
    Unit string // ingredient.unit
}
