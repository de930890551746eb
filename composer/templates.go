package composer

import "pet-offers-bot/classifier"

var openingByKind = map[classifier.Kind][]string{
	classifier.KindFood: {
		"🍽️ *Economia na ração pro seu pet:*",
		"🐾 *Olha essa oferta de ração pra cuidar bem do seu pet:*",
		"🥣 *Ração em promoção pra manter o potinho sempre cheio:*",
		"🍖 *Alimento de qualidade com preço de oferta:*",
	},
	classifier.KindSnack: {
		"🦴 *Mimo gostoso pro seu pet sem pesar no bolso:*",
		"🍖 *Petisco em oferta pra alegrar o dia do seu pet:*",
		"😋 *Hora do snack! Olha esse petisco em promoção:*",
		"🎁 *Agrado especial pro seu pet com desconto:*",
	},
	classifier.KindToy: {
		"🎾 *Hora de brincar! Olha esse brinquedo em oferta:*",
		"🐶 *Brinquedo novo pro seu pet gastar energia:*",
		"🎉 *Promo de brinquedo pra acabar com o tédio do seu pet:*",
		"🧸 *Diversão garantida com esse brinquedo em oferta:*",
	},
	classifier.KindHygiene: {
		"🧼 *Cuidar da higiene do pet também pode ser barato:*",
		"🚿 *Oferta pra manter seu pet limpinho e cheiroso:*",
		"🧴 *Produto de higiene em promoção pro seu pet:*",
		"✨ *Limpeza e praticidade com preço especial:*",
	},
	classifier.KindAccessory: {
		"🎀 *Acessório em promoção pra deixar seu pet ainda mais estiloso:*",
		"📦 *Acessório útil pro dia a dia do seu pet com desconto:*",
		"🛏️ *Conforto e praticidade pro seu pet com preço de oferta:*",
		"⭐ *Item essencial pro seu pet em promoção:*",
	},
	classifier.KindGeneric: {
		"🐾 *Olha essa pra hoje pro seu pet:*",
		"✨ *Oferta selecionada pra quem ama pet:*",
		"🎁 *Achamos uma promoção legal pro seu pet:*",
		"💚 *Mais uma chance de economizar no seu pet:*",
		"🔥 *Promo boa pra cuidar do seu pet sem pesar no bolso:*",
		"⭐ *Dica rápida de economia pra tutores:*",
		"🐶 *Seu pet merece, e o seu bolso agradece:*",
		"📣 *Oferta fresca que acabou de sair:*",
	},
}

var ctaByKind = map[classifier.Kind][]string{
	classifier.KindFood: {
		"🍽️ Veja os sabores e tamanhos disponíveis aqui:",
		"🐕 Confira as avaliações de quem já comprou essa ração:",
		"🥣 Clique pra ver se o pacote ideal pro seu pet está em oferta:",
		"📦 Veja frete, prazo e mais detalhes da ração aqui:",
	},
	classifier.KindSnack: {
		"🦴 Veja os sabores e quantidades disponíveis aqui:",
		"😋 Confira o que outros tutores acharam desse petisco:",
		"🍖 Clique pra ver mais detalhes desse snack pro seu pet:",
		"🎁 Garanta já esse mimo pro seu pet:",
	},
	classifier.KindToy: {
		"🎾 Veja as fotos e tamanhos desse brinquedo:",
		"🐾 Confira como esse brinquedo pode entreter seu pet:",
		"🎉 Clique pra ver mais modelos e cores disponíveis:",
		"🧸 Veja as avaliações e garanta diversão pro seu pet:",
	},
	classifier.KindHygiene: {
		"🧼 Veja como usar e as avaliações de outros tutores:",
		"🚿 Clique pra ver detalhes e componentes do produto:",
		"🧴 Confira instruções de uso e mais informações aqui:",
		"✨ Veja quantidades e opções disponíveis:",
	},
	classifier.KindAccessory: {
		"📏 Veja medidas, tamanhos e cores disponíveis aqui:",
		"🎀 Confira as fotos e comentários de quem já comprou:",
		"🛏️ Clique pra ver mais detalhes desse acessório:",
		"⭐ Veja as avaliações e garanta o seu:",
	},
	classifier.KindGeneric: {
		"🛒 Clique para ver fotos, avaliações e cores disponíveis:",
		"🐶 Veja os detalhes e tamanhos disponíveis aqui:",
		"🐾 Confira as fotos e os comentários de quem já comprou:",
		"💚 Clique e veja se ainda está disponível na promoção:",
		"📦 Veja o frete, prazo de entrega e mais detalhes aqui:",
		"🔥 Aproveite enquanto ainda está com desconto:",
		"⭐ Veja as avaliações e descubra por que esse produto é tão bem avaliado:",
		"🎯 Clique para ver mais fotos e escolher o modelo ideal:",
		"💥 Confira o preço atualizado e condições de pagamento:",
	},
}

var urgencyLines = []string{
	"⚠️ Oferta por tempo limitado!",
	"⏰ Corre! Promoção válida apenas hoje!",
	"🔥 Últimas unidades com esse preço!",
	"⚡ Estoque limitado! Garanta o seu agora!",
	"🎯 Oferta relâmpago! Pode acabar a qualquer momento!",
	"💨 Não perca! Essa promoção não vai durar muito!",
	"🚨 Atenção! Preço promocional por tempo limitado!",
	"⏳ Aproveite antes que o desconto acabe!",
	"🔔 Alerta de oferta! Pode sair do ar a qualquer momento!",
	"💥 Promoção imperdível! Estoque acabando rápido!",
	"🎁 Última chance de garantir com esse desconto!",
	"⚠️ Pouquíssimas unidades restantes!",
	"🏃‍♂️ Corre! Outros compradores já estão de olho!",
	"🔥 Oferta quente! Pode acabar nas próximas horas!",
	"⭐ Preço especial que não vai se repetir tão cedo!",
	"💎 Oportunidade única! Garanta já!",
	"🚀 Voa! Essa oferta é por tempo limitado!",
	"⏰ Tick-tock! O desconto pode acabar a qualquer momento!",
	"🎯 Não deixe para depois! Estoque limitado!",
	"💰 Economia real! Mas só enquanto durar o estoque!",
}
