package shopee

// PetCategories is the monitored "Animais Domésticos" taxonomy: dogs, cats
// and aquarium fish only.
var PetCategories = []int64{
	101926, // Brinquedos p/ Cachorros e Gatos - Mordedores, Ossos e Bolinhas
	100929, // Cuidados com Pêlos
	100906, // Ração para Cachorros
	101682, // Casinhas
	100936, // Acessórios para o Pescoço
	100923, // Caixas e Camas de Gato
	101925, // Brinquedos p/ Cachorros e Gatos - Bastões
	100908, // Ração para Gatos
	100917, // Essenciais para Viagens
	101684, // Gaiolas e Cestos
	100933, // Roupas para Animais Domésticos
	100912, // Ração para Animais de Aquário
	101681, // Camas e Tapetes
	100942, // Medicamentos
	100907, // Petiscos para Cachorros
	101678, // Brinquedos para Animais Domésticos Pequenos
	100926, // Almofadas e Bandejas para Treinar Cães
	100938, // Acessórios de Pêlos
	101683, // Habitats e Acessórios
	100909, // Petiscos para Gatos
	100918, // Trelas, Coleiras, Arnêses, Focinheiras e Selas
	101927, // Brinquedos p/ Cachorros e Gatos - Frisbees
	100930, // Cuidados Orais
	100924, // Cama e Banheiro para Animais Domésticos Pequenos
	101686, // Móveis - Outros
	100916, // Tigelas e Alimentadores
	100939, // Chapéus
	101679, // Brinquedos para Pássaros
	100944, // Vitaminas e Suplementos
	100934, // Equipamento para Climas Úmidos
	101685, // Almofadas e Postes para Arranhar
	100921, // Artigos para Aquários
	100927, // Scoopers e Sacos para Fezes
	101928, // Brinquedos p/ Cachorros e Gatos - Outros
	100935, // Botas, Meias e Protetores para Patas
	100931, // Cuidados com as Unhas
	100925, // Fraldas
	101680, // Brinquedos - Outros
	100937, // Óculos
	100922, // Acessórios - Outros
	100940, // Roupas e Acessórios - Outros
	100932, // Cuidados - Outros
	100928, // Cama e Banheiro - Outros
	100673, // Outros
}

// DiagnosticCategory is the category probed by the connectivity check.
const DiagnosticCategory = 101926
