package ledger

import "github.com/google/uuid"

type seedAccount struct {
	code          string
	name          string
	nature        Nature
	kind          Kind
	contra        bool
	incomeClass   IncomeClass
	cashFlowClass CashFlowClass
}

// DefaultChart returns the seed chart of accounts for a new company: a
// small-business Brazilian chart whose codes the statement derivers bind
// to by default (cash 1.1.1, retained earnings 3.2.1.01, income summary
// 7.1.1.01 and so on).
func DefaultChart() []Account {
	seeds := []seedAccount{
		{code: "1", name: "Ativo", nature: NatureAsset, kind: KindSynthetic},
		{code: "1.1", name: "Ativo Circulante", nature: NatureAsset, kind: KindSynthetic},
		{code: "1.1.1", name: "Caixa e Equivalentes", nature: NatureAsset, kind: KindSynthetic},
		{code: "1.1.1.01", name: "Caixa", nature: NatureAsset, kind: KindAnalytic, cashFlowClass: CashFlowNotApplicable},
		{code: "1.1.1.02", name: "Bancos Conta Movimento", nature: NatureAsset, kind: KindAnalytic, cashFlowClass: CashFlowNotApplicable},
		{code: "1.1.2", name: "Contas a Receber", nature: NatureAsset, kind: KindSynthetic},
		{code: "1.1.2.01", name: "Clientes", nature: NatureAsset, kind: KindAnalytic, cashFlowClass: CashFlowOperating},
		{code: "1.1.3", name: "Estoques", nature: NatureAsset, kind: KindSynthetic},
		{code: "1.1.3.01", name: "Mercadorias para Revenda", nature: NatureAsset, kind: KindAnalytic, cashFlowClass: CashFlowOperating},
		{code: "1.2", name: "Ativo Não Circulante", nature: NatureAsset, kind: KindSynthetic},
		{code: "1.2.1", name: "Imobilizado", nature: NatureAsset, kind: KindSynthetic},
		{code: "1.2.1.01", name: "Máquinas e Equipamentos", nature: NatureAsset, kind: KindAnalytic, cashFlowClass: CashFlowInvesting},
		{code: "1.2.1.02", name: "Móveis e Utensílios", nature: NatureAsset, kind: KindAnalytic, cashFlowClass: CashFlowInvesting},
		{code: "1.2.1.09", name: "Depreciação Acumulada", nature: NatureAsset, kind: KindAnalytic, contra: true, cashFlowClass: CashFlowNotApplicable},
		{code: "2", name: "Passivo", nature: NatureLiability, kind: KindSynthetic},
		{code: "2.1", name: "Passivo Circulante", nature: NatureLiability, kind: KindSynthetic},
		{code: "2.1.1", name: "Fornecedores", nature: NatureLiability, kind: KindSynthetic},
		{code: "2.1.1.01", name: "Fornecedores Nacionais", nature: NatureLiability, kind: KindAnalytic, cashFlowClass: CashFlowOperating},
		{code: "2.1.2", name: "Obrigações Trabalhistas", nature: NatureLiability, kind: KindSynthetic},
		{code: "2.1.2.01", name: "Salários a Pagar", nature: NatureLiability, kind: KindAnalytic, cashFlowClass: CashFlowOperating},
		{code: "2.1.3", name: "Obrigações Fiscais", nature: NatureLiability, kind: KindSynthetic},
		{code: "2.1.3.01", name: "Impostos a Recolher", nature: NatureLiability, kind: KindAnalytic, cashFlowClass: CashFlowOperating},
		{code: "2.2", name: "Passivo Não Circulante", nature: NatureLiability, kind: KindSynthetic},
		{code: "2.2.1", name: "Empréstimos e Financiamentos", nature: NatureLiability, kind: KindSynthetic},
		{code: "2.2.1.01", name: "Empréstimos Bancários", nature: NatureLiability, kind: KindAnalytic, cashFlowClass: CashFlowFinancing},
		{code: "3", name: "Patrimônio Líquido", nature: NatureEquity, kind: KindSynthetic},
		{code: "3.1", name: "Capital Social", nature: NatureEquity, kind: KindSynthetic},
		{code: "3.1.1.01", name: "Capital Social Subscrito", nature: NatureEquity, kind: KindAnalytic, cashFlowClass: CashFlowFinancing},
		{code: "3.2", name: "Reservas e Resultados", nature: NatureEquity, kind: KindSynthetic},
		{code: "3.2.1", name: "Resultados Acumulados", nature: NatureEquity, kind: KindSynthetic},
		{code: "3.2.1.01", name: "Lucros ou Prejuízos Acumulados", nature: NatureEquity, kind: KindAnalytic, cashFlowClass: CashFlowNotApplicable},
		{code: "4", name: "Receitas", nature: NatureRevenue, kind: KindSynthetic},
		{code: "4.1", name: "Receita Operacional", nature: NatureRevenue, kind: KindSynthetic},
		{code: "4.1.1.01", name: "Receita de Vendas", nature: NatureRevenue, kind: KindAnalytic, incomeClass: IncomeGrossRevenue},
		{code: "4.1.1.02", name: "Receita de Serviços", nature: NatureRevenue, kind: KindAnalytic, incomeClass: IncomeGrossRevenue},
		{code: "4.1.2.01", name: "Deduções da Receita", nature: NatureRevenue, kind: KindAnalytic, contra: true, incomeClass: IncomeRevenueDeduction},
		{code: "4.2", name: "Receitas Financeiras", nature: NatureRevenue, kind: KindSynthetic},
		{code: "4.2.1.01", name: "Juros Ativos", nature: NatureRevenue, kind: KindAnalytic, incomeClass: IncomeFinancialRevenue},
		{code: "5", name: "Despesas", nature: NatureExpense, kind: KindSynthetic},
		{code: "5.1", name: "Despesas Comerciais", nature: NatureExpense, kind: KindSynthetic},
		{code: "5.1.1.01", name: "Despesas com Vendas", nature: NatureExpense, kind: KindAnalytic, incomeClass: IncomeOperatingExpense},
		{code: "5.2", name: "Despesas Administrativas", nature: NatureExpense, kind: KindSynthetic},
		{code: "5.2.1.01", name: "Salários e Encargos", nature: NatureExpense, kind: KindAnalytic, incomeClass: IncomeOperatingExpense},
		{code: "5.2.2.01", name: "Aluguéis", nature: NatureExpense, kind: KindAnalytic, incomeClass: IncomeOperatingExpense},
		{code: "5.2.3.01", name: "Despesa com Depreciação", nature: NatureExpense, kind: KindAnalytic, incomeClass: IncomeOperatingExpense},
		{code: "5.3", name: "Despesas Financeiras", nature: NatureExpense, kind: KindSynthetic},
		{code: "5.3.1.01", name: "Juros Passivos", nature: NatureExpense, kind: KindAnalytic, incomeClass: IncomeFinancialExpense},
		{code: "5.4", name: "Despesas Tributárias", nature: NatureExpense, kind: KindSynthetic},
		{code: "5.4.1.01", name: "IRPJ e CSLL", nature: NatureExpense, kind: KindAnalytic, incomeClass: IncomeTax},
		{code: "6", name: "Custos", nature: NatureCost, kind: KindSynthetic},
		{code: "6.1", name: "Custos das Vendas", nature: NatureCost, kind: KindSynthetic},
		{code: "6.1.1.01", name: "Custo das Mercadorias Vendidas", nature: NatureCost, kind: KindAnalytic, incomeClass: IncomeCostOfSales},
		{code: "7", name: "Contas de Apuração", nature: NatureEquity, kind: KindSynthetic},
		{code: "7.1", name: "Apuração do Resultado", nature: NatureEquity, kind: KindSynthetic},
		{code: "7.1.1.01", name: "Apuração do Resultado do Exercício", nature: NatureEquity, kind: KindAnalytic, cashFlowClass: CashFlowNotApplicable},
	}

	accounts := make([]Account, 0, len(seeds))
	byCode := make(map[string]uuid.UUID, len(seeds))
	for _, s := range seeds {
		acc := Account{
			ID:            uuid.New(),
			Code:          s.code,
			Name:          s.name,
			Nature:        s.nature,
			Kind:          s.kind,
			IsContra:      s.contra,
			IncomeClass:   s.incomeClass,
			CashFlowClass: s.cashFlowClass,
		}
		if acc.CashFlowClass == "" {
			acc.CashFlowClass = CashFlowNotApplicable
		}
		// Link to the nearest seeded ancestor; not every dotted level
		// is materialized as its own account.
		for parentCode, ok := parentCodeOf(s.code); ok; parentCode, ok = parentCodeOf(parentCode) {
			if parentID, found := byCode[parentCode]; found {
				id := parentID
				acc.ParentID = &id
				break
			}
		}
		byCode[s.code] = acc.ID
		accounts = append(accounts, acc)
	}
	return accounts
}

// parentCodeOf strips the last dotted segment: "1.1.2.01" -> "1.1.2".
func parentCodeOf(code string) (string, bool) {
	for i := len(code) - 1; i >= 0; i-- {
		if code[i] == '.' {
			return code[:i], true
		}
	}
	return "", false
}
